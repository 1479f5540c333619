package wsctx

import "strings"

// Common header names used during handshake inspection.
const (
	headerHost          = "Host"
	headerUpgrade       = "Upgrade"
	headerConnection    = "Connection"
	headerOrigin        = "Origin"
	headerSecKey        = "Sec-WebSocket-Key"
	headerSecVersion    = "Sec-WebSocket-Version"
	headerSecProtocol   = "Sec-WebSocket-Protocol"
	headerSecExtensions = "Sec-WebSocket-Extensions"
	headerSecAccept     = "Sec-WebSocket-Accept"
)

// Field is a single entry of an ordered multimap: one key with the values
// received for it, in arrival order.
type Field struct {
	Key    string
	Values []string
}

// Fields is an ordered multimap of field names to values. It preserves the
// insertion order of keys and of values within a key, and keeps duplicate
// values as-is. Key comparison is case-insensitive when the map is created
// with NewHeaderFields, exact otherwise.
//
// A nil *Fields behaves as an empty map on reads, so accessors built on top
// of it never have an absent state to report.
type Fields struct {
	fold bool
	kv   []Field
}

// NewFields returns an empty ordered multimap with exact key comparison,
// suitable for query parameters.
func NewFields() *Fields {
	return &Fields{}
}

// NewHeaderFields returns an empty ordered multimap with case-insensitive
// key comparison, suitable for HTTP headers.
func NewHeaderFields() *Fields {
	return &Fields{fold: true}
}

func (f *Fields) match(a, b string) bool {
	if f.fold {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// Add appends values under key. The first Add of a key fixes its position
// in iteration order; later Adds of the same key extend its value list.
// Adding no values is a no-op: a key only exists once it carries a value.
func (f *Fields) Add(key string, values ...string) {
	if len(values) == 0 {
		return
	}
	for i := range f.kv {
		if f.match(f.kv[i].Key, key) {
			f.kv[i].Values = append(f.kv[i].Values, values...)
			return
		}
	}
	f.kv = append(f.kv, Field{Key: key, Values: values})
}

// Get returns the first value received for key, or "" if the key is absent.
func (f *Fields) Get(key string) string {
	vs := f.Values(key)
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Values returns every value received for key in arrival order, or nil if
// the key is absent. The returned slice is shared with the map; callers
// must not modify it.
func (f *Fields) Values(key string) []string {
	if f == nil {
		return nil
	}
	for i := range f.kv {
		if f.match(f.kv[i].Key, key) {
			return f.kv[i].Values
		}
	}
	return nil
}

// Has reports whether at least one value was received for key.
func (f *Fields) Has(key string) bool {
	return f.Values(key) != nil
}

// Len returns the number of distinct keys.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.kv)
}

// Each calls it for every key in insertion order until it returns false.
func (f *Fields) Each(it func(key string, values []string) bool) {
	if f == nil {
		return
	}
	for i := range f.kv {
		if !it(f.kv[i].Key, f.kv[i].Values) {
			return
		}
	}
}
