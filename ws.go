/*
Package wsctx implements the handshake context that sits between a raw
inbound HTTP upgrade request and a WebSocket connection endpoint.

The main purpose of this package is to provide a consistent read-only
snapshot of every piece of metadata needed to validate and service a
WebSocket handshake, plus the lifecycle bridge to the connection's byte
stream and to the endpoint object created for this specific request.

Overview.

A context is usually obtained by upgrading an http request from the
`net/http` package:

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ctx, err := wsctx.Upgrade(r, w, wsctx.Anonymous)
		if err != nil {
			// handle error
		}
		for _, p := range ctx.Protocols() {
			// inspect client subprotocol proposals
		}
		err = ctx.WebSocket().Accept(nil)
	})

Alternatively, build the request/response/connection triple by hand to run
the handshake over a raw net.Conn, or to unit test protocol logic against
an in-memory request double:

	ctx := wsctx.NewHandshakeContext(req, resp, conn, user, "")

All context accessors are pure projections over the wrapped request; none
of them caches, fails or mutates. The two close operations are the only
paths that touch the underlying transport.

Frame encoding and decoding is out of scope here: the endpoint object
completes (or rejects) the opening handshake and exposes the context, and
everything past the handshake belongs to the protocol layer above.
*/
package wsctx
