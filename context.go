package wsctx

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/gobwas/httphead"
	"github.com/google/uuid"
)

// Context is the read surface a handshake exposes to the WebSocket endpoint
// and to policy code above it. HandshakeContext is the listener-backed
// implementation; an in-memory variant is straightforward to build for
// tests since every method is a pure read.
type Context interface {
	// Header returns the handshake request headers. Never nil.
	Header() *Fields

	// Cookies returns the parsed request cookies, if any.
	Cookies() []*http.Cookie

	// Host returns the Host header value, port included when present.
	Host() string

	IsAuthenticated() bool
	IsLocal() bool
	IsSecure() bool
	IsWebSocketRequest() bool

	// Origin returns the raw Origin header value, or "".
	Origin() string

	// Query returns the query parameters. Never nil, possibly empty.
	Query() *Fields

	// URL returns the parsed request target, or nil when the raw target
	// could not be parsed.
	URL() *url.URL

	SecWebSocketKey() string
	SecWebSocketVersion() string

	// Protocols returns the client's candidate subprotocol names in
	// header order, duplicates and case preserved. Each call produces a
	// fresh slice, so repeated enumeration is safe.
	Protocols() []string

	// Extensions returns the options of the Sec-WebSocket-Extensions
	// headers. Malformed header values read as absent.
	Extensions() []httphead.Option

	// User returns the authentication principal, Anonymous when the
	// request carries none. Never nil.
	User() *Principal

	// LocalAddr and RemoteAddr return the endpoints of the underlying
	// connection.
	LocalAddr() net.Addr
	RemoteAddr() net.Addr

	// Stream returns the connection's byte stream for the endpoint to
	// drive the protocol over.
	Stream() io.ReadWriter

	// WebSocket returns the endpoint object created for this handshake.
	// The same instance for the lifetime of the context.
	WebSocket() *Endpoint

	// Close tears the underlying connection down forcibly, skipping any
	// graceful completion step.
	Close() error

	// CloseWithStatus sends a plain HTTP response carrying code, then
	// closes the connection.
	CloseWithStatus(code int) error

	// String returns the request's diagnostic dump.
	String() string
}

// HandshakeContext is a consistent read-only view over one upgrade
// request/response/connection triple, captured at the moment the request
// arrived. It is created once per handshake attempt and never reused.
//
// Accessors forward to the wrapped request at call time; nothing is cached,
// so there is a single source of truth for every field. Only Close and
// CloseWithStatus touch the transport.
type HandshakeContext struct {
	id   uuid.UUID
	req  Request
	resp ResponseWriter
	conn Conn
	user *Principal
	ws   *Endpoint
	log  *slog.Logger
}

var _ Context = (*HandshakeContext)(nil)

// NewHandshakeContext wraps an already-parsed upgrade triple. The protocol
// argument is the pre-selected subprotocol for the endpoint; empty means
// none was chosen yet. A nil user reads as Anonymous.
//
// Construction cannot fail: malformed input surfaces later as fields that
// read empty, leaving validation to the protocol layer that checks them.
// The returned context owns exactly one endpoint, created here and bound
// bidirectionally to the context.
func NewHandshakeContext(req Request, resp ResponseWriter, conn Conn, user *Principal, protocol string) *HandshakeContext {
	if user == nil {
		user = Anonymous
	}
	c := &HandshakeContext{
		id:   uuid.New(),
		req:  req,
		resp: resp,
		conn: conn,
		user: user,
	}
	c.ws = newEndpoint(c, protocol)

	log := conn.Logger()
	if log == nil {
		log = slog.Default()
	}
	c.log = log.With("handshake", c.id.String())

	return c
}

// ID returns the identifier assigned to this handshake attempt, used only
// for log attribution.
func (c *HandshakeContext) ID() uuid.UUID { return c.id }

func (c *HandshakeContext) Header() *Fields { return c.req.Header() }

func (c *HandshakeContext) Cookies() []*http.Cookie { return c.req.Cookies() }

func (c *HandshakeContext) Host() string { return c.req.Host() }

func (c *HandshakeContext) IsAuthenticated() bool { return c.req.IsAuthenticated() }

func (c *HandshakeContext) IsLocal() bool { return c.req.IsLocal() }

func (c *HandshakeContext) IsSecure() bool { return c.req.IsSecure() }

func (c *HandshakeContext) IsWebSocketRequest() bool { return c.req.IsWebSocketRequest() }

func (c *HandshakeContext) Origin() string { return c.req.Origin() }

func (c *HandshakeContext) Query() *Fields {
	if q := c.req.Query(); q != nil {
		return q
	}
	return NewFields()
}

func (c *HandshakeContext) URL() *url.URL { return c.req.URL() }

func (c *HandshakeContext) SecWebSocketKey() string { return c.req.SecWebSocketKey() }

func (c *HandshakeContext) SecWebSocketVersion() string { return c.req.SecWebSocketVersion() }

// Protocols re-parses the Sec-WebSocket-Protocol headers on every call, so
// the sequence is restartable and always reflects the live request.
func (c *HandshakeContext) Protocols() []string {
	var ret []string
	for _, v := range c.req.Header().Values(headerSecProtocol) {
		ret = append(ret, ParseProtocols(v)...)
	}
	return ret
}

func (c *HandshakeContext) Extensions() []httphead.Option {
	return parseExtensions(c.req.Header().Values(headerSecExtensions), nil)
}

func (c *HandshakeContext) User() *Principal { return c.user }

func (c *HandshakeContext) LocalAddr() net.Addr { return c.conn.LocalAddr() }

func (c *HandshakeContext) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *HandshakeContext) Stream() io.ReadWriter { return c.conn.Stream() }

func (c *HandshakeContext) WebSocket() *Endpoint { return c.ws }

// Close forcibly closes the underlying connection without sending any
// response bytes; used once the handshake or protocol has already failed.
// Transport errors propagate unwrapped. Not safe to call twice
// concurrently.
func (c *HandshakeContext) Close() error {
	c.log.Debug("closing handshake connection", "force", true)
	return c.conn.Close(true)
}

// CloseWithStatus rejects the handshake with a plain HTTP response carrying
// code, then closes the connection gracefully. Accessors keep returning the
// wrapped request's values afterwards.
func (c *HandshakeContext) CloseWithStatus(code int) error {
	c.log.Debug("closing handshake connection", "status", code)
	if err := c.resp.WriteStatus(code); err != nil {
		return err
	}
	return c.conn.Close(false)
}

// String returns the wrapped request's diagnostic dump.
func (c *HandshakeContext) String() string {
	return c.req.String()
}
