package wsctx

import (
	"bufio"
	"net/http"
	"strconv"
)

const (
	textUpgrade      = "HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n"
	textErrorContent = "Content-Type: text/plain; charset=utf-8\r\nX-Content-Type-Options: nosniff\r\n"
	crlf             = "\r\n"
	colonAndSpace    = ": "
)

// httpWriteHeader writes a single header line.
func httpWriteHeader(bw *bufio.Writer, key, value string) {
	bw.WriteString(key)
	bw.WriteString(colonAndSpace)
	bw.WriteString(value)
	bw.WriteString(crlf)
}

// httpWriteStatus writes a complete HTTP/1.1 response carrying code, the
// standard status text as body and a Connection: close marker, since the
// transport is torn down right after.
func httpWriteStatus(bw *bufio.Writer, code int) {
	text := http.StatusText(code)

	bw.WriteString("HTTP/1.1 ")
	bw.WriteString(strconv.Itoa(code))
	bw.WriteByte(' ')
	bw.WriteString(text)
	bw.WriteString(crlf)
	bw.WriteString(textErrorContent)
	httpWriteHeader(bw, "Content-Length", strconv.Itoa(len(text)))
	httpWriteHeader(bw, "Connection", "close")
	bw.WriteString(crlf)
	bw.WriteString(text)
}

// httpWriteUpgrade writes the 101 Switching Protocols response for the
// given accept key, negotiated subprotocol (empty for none) and extra
// headers.
func httpWriteUpgrade(bw *bufio.Writer, accept, protocol string, extra http.Header) {
	bw.WriteString(textUpgrade)
	httpWriteHeader(bw, headerSecAccept, accept)
	if protocol != "" {
		httpWriteHeader(bw, headerSecProtocol, protocol)
	}
	for k, vs := range extra {
		for _, v := range vs {
			httpWriteHeader(bw, k, v)
		}
	}
	bw.WriteString(crlf)
}
