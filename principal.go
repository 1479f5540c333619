package wsctx

import "strings"

// Principal is the resolved identity of the handshake caller, computed by
// an authentication layer before the context is constructed and consumed
// here as an already-resolved value.
type Principal struct {
	// Name is the authenticated identity, empty for anonymous callers.
	Name string

	// Scheme is the authentication scheme that resolved the identity
	// (for example "Basic" or "Bearer"). Empty means unauthenticated.
	Scheme string

	// Roles is the set of role names granted to the identity.
	Roles []string
}

// Anonymous is the unauthenticated sentinel. Contexts constructed with a
// nil principal expose Anonymous instead, so User never reads as absent.
var Anonymous = &Principal{}

// Authenticated reports whether the principal was resolved by some
// authentication scheme.
func (p *Principal) Authenticated() bool {
	return p != nil && p.Scheme != ""
}

// InRole reports whether the principal carries the named role. Role names
// compare case-insensitively.
func (p *Principal) InRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
