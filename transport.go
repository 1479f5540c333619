package wsctx

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
)

// Request is the already-parsed upgrade request this package projects.
// Implementations are expected to expose parsed protocol data only; the
// request line and header parsing itself happens in the accepting layer.
//
// Every method is a read: absent data reads as a zero value ("" / nil /
// false), never as an error. HTTPRequest is the listener-backed
// implementation; tests may provide an in-memory one.
type Request interface {
	// Header returns the request headers as an ordered case-insensitive
	// multimap. Never nil.
	Header() *Fields

	// Cookies returns the cookies parsed from the request, if any.
	Cookies() []*http.Cookie

	// Host returns the value of the Host header, including the port when
	// the client sent one.
	Host() string

	// IsAuthenticated reports whether an authentication layer resolved a
	// principal for this request.
	IsAuthenticated() bool

	// IsLocal reports whether the request originates from the local host.
	IsLocal() bool

	// IsSecure reports whether the request arrived over a TLS connection.
	IsSecure() bool

	// IsWebSocketRequest reports whether the request is a well-formed
	// RFC 6455 opening handshake.
	IsWebSocketRequest() bool

	// Origin returns the raw value of the Origin header, or "".
	Origin() string

	// Query returns the query parameters as an ordered multimap. Never
	// nil; empty when the request target carries no query string.
	Query() *Fields

	// URL returns the parsed request target, or nil if the raw target
	// could not be parsed.
	URL() *url.URL

	// SecWebSocketKey returns the raw Sec-WebSocket-Key header value.
	SecWebSocketKey() string

	// SecWebSocketVersion returns the raw Sec-WebSocket-Version header
	// value.
	SecWebSocketVersion() string

	// String returns a human-readable dump of the request line and
	// headers, for diagnostics only.
	String() string
}

// ResponseWriter is the single operation this package needs from the
// response side of the handshake: emit a plain HTTP response carrying the
// given status code. Used by the rejection path before any WebSocket-level
// bytes have been exchanged.
type ResponseWriter interface {
	WriteStatus(code int) error
}

// Conn is the established transport connection underneath the handshake.
type Conn interface {
	// Stream returns the connection's byte stream, or nil when the
	// implementation carries no transport (in-memory doubles).
	Stream() io.ReadWriter

	// LocalAddr returns the server-side endpoint of the connection.
	LocalAddr() net.Addr

	// RemoteAddr returns the client-side endpoint of the connection.
	RemoteAddr() net.Addr

	// Close closes the connection. With force set, any graceful
	// completion step is skipped and the transport is torn down as-is.
	// Not safe for concurrent invocation; callers close at most once.
	Close(force bool) error

	// Logger returns the log sink of the connection's owning listener.
	// May return nil, in which case callers fall back to slog.Default.
	Logger() *slog.Logger
}
