package wsctx

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"

	"github.com/gobwas/pool/pbufio"
)

// DefaultUpgrader is an upgrader that holds no options and is used by the
// Upgrade function.
var DefaultUpgrader Upgrader

// Upgrade is like Upgrader{}.Upgrade.
func Upgrade(r *http.Request, w http.ResponseWriter, user *Principal) (*HandshakeContext, error) {
	return DefaultUpgrader.Upgrade(r, w, user)
}

// Upgrader captures handshake contexts from requests served by net/http.
type Upgrader struct {
	// Protocol is the pre-selected subprotocol handed to the endpoint of
	// every captured context. Empty means none; negotiation can still
	// pick one from the client's proposals.
	Protocol string

	// Logger is the sink attached to captured connections. Nil falls
	// back to slog.Default.
	Logger *slog.Logger
}

// Upgrade hijacks the connection underneath w and wraps it, r and the
// resolved principal into a handshake context. It writes nothing to the
// client: validating the handshake and answering it belongs to the
// endpoint and to the policy layer above.
//
// The only error paths are a non-hijackable ResponseWriter and hijack
// failure itself; a malformed upgrade request still yields a context whose
// IsWebSocketRequest reads false.
func (u Upgrader) Upgrade(r *http.Request, w http.ResponseWriter, user *Principal) (*HandshakeContext, error) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return nil, ErrNotHijacker
	}
	conn, rw, err := hj.Hijack()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return nil, err
	}

	nc := &NetConn{
		conn: conn,
		// Respect bytes the server may have buffered past the request.
		stream: struct {
			io.Reader
			io.Writer
		}{rw.Reader, conn},
		log: u.Logger,
	}
	req := NewHTTPRequest(r, user.Authenticated())
	resp := &HTTPResponse{W: conn}

	return NewHandshakeContext(req, resp, nc, user, u.Protocol), nil
}

// HTTPRequest adapts a parsed *http.Request to the Request surface this
// package projects. It consumes already-parsed fields only and computes
// the handshake booleans the way an accepting listener would.
type HTTPRequest struct {
	r      *http.Request
	authed bool
}

var _ Request = (*HTTPRequest)(nil)

// NewHTTPRequest wraps r. The authenticated flag is the verdict of the
// authentication layer that ran before the context was built.
func NewHTTPRequest(r *http.Request, authenticated bool) *HTTPRequest {
	return &HTTPRequest{r: r, authed: authenticated}
}

// Header rebuilds the ordered multimap on every call from the live request
// headers. net/http stores headers in a map, so the original wire order is
// gone; keys are emitted in sorted canonical order to stay deterministic.
func (q *HTTPRequest) Header() *Fields {
	keys := make([]string, 0, len(q.r.Header))
	for k := range q.r.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := NewHeaderFields()
	for _, k := range keys {
		f.Add(k, q.r.Header[k]...)
	}
	return f
}

func (q *HTTPRequest) Cookies() []*http.Cookie { return q.r.Cookies() }

func (q *HTTPRequest) Host() string { return q.r.Host }

func (q *HTTPRequest) IsAuthenticated() bool { return q.authed }

// IsLocal reports whether the client address is a loopback address.
func (q *HTTPRequest) IsLocal() bool {
	host, _, err := net.SplitHostPort(q.r.RemoteAddr)
	if err != nil {
		host = q.r.RemoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (q *HTTPRequest) IsSecure() bool { return q.r.TLS != nil }

// IsWebSocketRequest reports whether the request is a well-formed RFC 6455
// opening handshake.
func (q *HTTPRequest) IsWebSocketRequest() bool {
	r := q.r
	// See https://tools.ietf.org/html/rfc6455#section-4.1
	// The method of the request MUST be GET, and the HTTP version MUST
	// be at least 1.1.
	if r.Method != http.MethodGet {
		return false
	}
	if r.ProtoMajor < 1 || (r.ProtoMajor == 1 && r.ProtoMinor < 1) {
		return false
	}
	if r.Host == "" {
		return false
	}
	if u := r.Header.Get(headerUpgrade); !strings.EqualFold(u, "websocket") {
		return false
	}
	if c := r.Header.Get(headerConnection); c != "Upgrade" && !hasToken(c, "upgrade") {
		return false
	}
	if len(r.Header.Get(headerSecKey)) != nonceSize {
		return false
	}
	return r.Header.Get(headerSecVersion) == "13"
}

func (q *HTTPRequest) Origin() string { return q.r.Header.Get(headerOrigin) }

// Query parses the raw query string on every call, preserving parameter
// order. Pairs whose key fails unescaping keep their raw text rather than
// disappearing.
func (q *HTTPRequest) Query() *Fields {
	f := NewFields()
	if q.r.URL == nil {
		return f
	}
	raw := q.r.URL.RawQuery
	for raw != "" {
		pair := raw
		if i := strings.IndexByte(pair, '&'); i >= 0 {
			pair, raw = pair[:i], pair[i+1:]
		} else {
			raw = ""
		}
		if pair == "" {
			continue
		}
		key, value := pair, ""
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key, value = pair[:i], pair[i+1:]
		}
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		f.Add(key, value)
	}
	return f
}

func (q *HTTPRequest) URL() *url.URL { return q.r.URL }

func (q *HTTPRequest) SecWebSocketKey() string { return q.r.Header.Get(headerSecKey) }

func (q *HTTPRequest) SecWebSocketVersion() string { return q.r.Header.Get(headerSecVersion) }

// String dumps the request line and headers for diagnostics.
func (q *HTTPRequest) String() string {
	dump, err := httputil.DumpRequest(q.r, false)
	if err != nil {
		return q.r.Method + " " + q.r.RequestURI + " " + q.r.Proto
	}
	return string(dump)
}

// HTTPResponse writes plain HTTP rejection responses straight to the
// hijacked connection.
type HTTPResponse struct {
	W io.Writer
}

var _ ResponseWriter = (*HTTPResponse)(nil)

// WriteStatus emits a minimal HTTP/1.1 response carrying code. Best
// effort, single attempt; write errors propagate unwrapped.
func (p *HTTPResponse) WriteStatus(code int) error {
	bw := pbufio.GetWriter(p.W, 512)
	defer pbufio.PutWriter(bw)

	httpWriteStatus(bw, code)
	return bw.Flush()
}

// NetConn adapts a net.Conn (typically hijacked from net/http) to the Conn
// surface, carrying the owning listener's log sink along.
type NetConn struct {
	conn   net.Conn
	stream io.ReadWriter
	log    *slog.Logger
}

var _ Conn = (*NetConn)(nil)

// NewNetConn wraps c. The logger may be nil.
func NewNetConn(c net.Conn, log *slog.Logger) *NetConn {
	return &NetConn{conn: c, stream: c, log: log}
}

func (n *NetConn) Stream() io.ReadWriter { return n.stream }

func (n *NetConn) LocalAddr() net.Addr { return n.conn.LocalAddr() }

func (n *NetConn) RemoteAddr() net.Addr { return n.conn.RemoteAddr() }

// Close closes the connection. A forced close drops any unsent data
// instead of completing the usual shutdown sequence.
func (n *NetConn) Close(force bool) error {
	if tc, ok := n.conn.(*net.TCPConn); ok && force {
		tc.SetLinger(0)
	}
	return n.conn.Close()
}

func (n *NetConn) Logger() *slog.Logger { return n.log }
