package wsctx

import (
	"crypto/sha1"
	"encoding/base64"
	"hash"
	"net/http"
	"sync"

	"github.com/gobwas/pool/pbufio"
)

const (
	// RFC6455: The value of this header field MUST be a nonce consisting
	// of a randomly selected 16-byte value that has been base64-encoded,
	// which makes it 24 bytes on the wire.
	nonceSize = 24
)

// webSocketMagic is concatenated with the client nonce when computing the
// Sec-WebSocket-Accept value (RFC 6455 section 4.2.2).
var webSocketMagic = []byte("258EAFA5-E914-47DA-95CA-C5AB0DC85B11")

// Endpoint is the WebSocket object created for exactly one handshake
// context. It holds a non-owning reference back to the context to read
// handshake fields during negotiation; the context owns the endpoint's
// lifetime. It completes or rejects the opening handshake; frame traffic
// past that point belongs to the protocol layer above.
type Endpoint struct {
	ctx      Context
	protocol string
}

func newEndpoint(ctx Context, protocol string) *Endpoint {
	return &Endpoint{ctx: ctx, protocol: protocol}
}

// Context returns the handshake context this endpoint was created for.
func (e *Endpoint) Context() Context { return e.ctx }

// Protocol returns the currently selected subprotocol, empty when none was
// pre-selected or negotiated.
func (e *Endpoint) Protocol() string { return e.protocol }

// Negotiate picks the first client-proposed subprotocol accepted by check,
// records it as the endpoint's protocol and returns it. With no accepted
// candidate the recorded protocol is left unchanged and ok is false.
func (e *Endpoint) Negotiate(check func(string) bool) (proto string, ok bool) {
	for _, p := range e.ctx.Protocols() {
		if check(p) {
			e.protocol = p
			return p, true
		}
	}
	return "", false
}

// Accept completes the opening handshake: it computes the accept key from
// the client nonce and writes the 101 Switching Protocols response to the
// connection's byte stream, carrying the selected subprotocol and any
// extra headers.
func (e *Endpoint) Accept(extra http.Header) error {
	nonce := e.ctx.SecWebSocketKey()
	if len(nonce) != nonceSize {
		return ErrBadSecKey
	}
	stream := e.ctx.Stream()
	if stream == nil {
		return ErrNoWriteConn
	}

	bw := pbufio.GetWriter(stream, 512)
	defer pbufio.PutWriter(bw)

	httpWriteUpgrade(bw, acceptKey(nonce), e.protocol, extra)
	return bw.Flush()
}

// Reject refuses the handshake with the given HTTP status code and closes
// the connection.
func (e *Endpoint) Reject(code int) error {
	return e.ctx.CloseWithStatus(code)
}

var sha1Pool sync.Pool

func acquireSha1() hash.Hash {
	if h := sha1Pool.Get(); h != nil {
		return h.(hash.Hash)
	}
	return sha1.New()
}

func releaseSha1(h hash.Hash) {
	h.Reset()
	sha1Pool.Put(h)
}

// acceptKey computes the Sec-WebSocket-Accept value for a client nonce.
func acceptKey(nonce string) string {
	sha := acquireSha1()
	defer releaseSha1(sha)

	sha.Write([]byte(nonce))
	sha.Write(webSocketMagic)

	var sum [sha1.Size]byte
	return base64.StdEncoding.EncodeToString(sha.Sum(sum[:0]))
}
