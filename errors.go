package wsctx

import "fmt"

// Errors returned by the upgrade entry points and the endpoint handshake
// writers. Accessors never fail; absent data reads as an empty value.
var (
	ErrNotHijacker = fmt.Errorf("given http.ResponseWriter is not a http.Hijacker")
	ErrBadSecKey   = fmt.Errorf("sec-websocket-key is missing or has wrong size")
	ErrNoWriteConn = fmt.Errorf("underlying connection exposes no byte stream")
)
