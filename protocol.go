package wsctx

import (
	"github.com/gobwas/httphead"
)

// ParseProtocols extracts the candidate subprotocol names from a raw
// Sec-WebSocket-Protocol header value.
//
// The value is split on commas and each token is trimmed of surrounding
// whitespace; tokens that are empty after trimming are dropped. Everything
// else passes through unchanged, in header order: no deduplication, no case
// normalization, no token-charset validation. Selection policy is entirely
// the caller's.
//
// An absent or empty value yields no names, never an error. Repeated calls
// produce a fresh slice with identical contents.
func ParseProtocols(header string) []string {
	if header == "" {
		return nil
	}
	var ret []string
	for i := 0; i <= len(header); {
		j := i
		for j < len(header) && header[j] != ',' {
			j++
		}
		if tok := strtrim(header[i:j]); tok != "" {
			ret = append(ret, tok)
		}
		i = j + 1
	}
	return ret
}

// SelectProtocol scans a raw Sec-WebSocket-Protocol header value for the
// first token accepted by check. Unlike ParseProtocols it applies RFC 7230
// token validation while scanning: ok is false when the value is not a
// well-formed token list.
func SelectProtocol(header string, check func(string) bool) (ret string, ok bool) {
	ok = httphead.ScanTokens([]byte(header), func(v []byte) bool {
		if check(string(v)) {
			ret = string(v)
			return false
		}
		return true
	})
	return ret, ok
}

// parseExtensions accumulates the options of every Sec-WebSocket-Extensions
// header value into dest. Malformed values are skipped; parsing never fails
// outward.
func parseExtensions(values []string, dest []httphead.Option) []httphead.Option {
	for _, v := range values {
		if opts, ok := httphead.ParseOptions([]byte(v), dest); ok {
			dest = opts
		}
	}
	return dest
}

// hasToken reports whether the comma-separated header value carries the
// given lower-case token.
func hasToken(header, token string) bool {
	found := false
	httphead.ScanTokens([]byte(header), func(v []byte) bool {
		if btsEqualFold(v, token) {
			found = true
			return false
		}
		return true
	})
	return found
}
