package wsctx

import (
	"bufio"
	"bytes"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func upgradeRequest(t *testing.T, target string, hdr map[string]string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.Header.Set(headerUpgrade, "websocket")
	r.Header.Set(headerConnection, "Upgrade")
	r.Header.Set(headerSecKey, "dGhlIHNhbXBsZSBub25jZQ==")
	r.Header.Set(headerSecVersion, "13")
	for k, v := range hdr {
		r.Header.Set(k, v)
	}
	return r
}

func TestHTTPRequestIsWebSocketRequest(t *testing.T) {
	for _, test := range []struct {
		label  string
		mutate func(r *http.Request)
		exp    bool
	}{
		{
			label:  "valid",
			mutate: func(r *http.Request) {},
			exp:    true,
		},
		{
			label:  "lowercase_values",
			mutate: func(r *http.Request) { r.Header.Set(headerUpgrade, "WebSocket") },
			exp:    true,
		},
		{
			label:  "connection_token_list",
			mutate: func(r *http.Request) { r.Header.Set(headerConnection, "keep-alive, Upgrade") },
			exp:    true,
		},
		{
			label:  "bad_method",
			mutate: func(r *http.Request) { r.Method = http.MethodPost },
			exp:    false,
		},
		{
			label:  "bad_proto",
			mutate: func(r *http.Request) { r.ProtoMajor, r.ProtoMinor = 1, 0 },
			exp:    false,
		},
		{
			label:  "no_host",
			mutate: func(r *http.Request) { r.Host = "" },
			exp:    false,
		},
		{
			label:  "bad_upgrade",
			mutate: func(r *http.Request) { r.Header.Set(headerUpgrade, "h2c") },
			exp:    false,
		},
		{
			label:  "bad_connection",
			mutate: func(r *http.Request) { r.Header.Set(headerConnection, "keep-alive") },
			exp:    false,
		},
		{
			label:  "bad_key_size",
			mutate: func(r *http.Request) { r.Header.Set(headerSecKey, "short") },
			exp:    false,
		},
		{
			label:  "bad_version",
			mutate: func(r *http.Request) { r.Header.Set(headerSecVersion, "8") },
			exp:    false,
		},
	} {
		t.Run(test.label, func(t *testing.T) {
			r := upgradeRequest(t, "http://example.com/chat", nil)
			test.mutate(r)
			if act := NewHTTPRequest(r, false).IsWebSocketRequest(); act != test.exp {
				t.Errorf("IsWebSocketRequest() = %v; want %v", act, test.exp)
			}
		})
	}
}

func TestHTTPRequestProjection(t *testing.T) {
	// Origin-form target, the shape a server-side request carries on the
	// wire; an absolute-form target would surface in the diagnostic dump.
	r := upgradeRequest(t, "/chat?b=2&a=1&a=3&empty=", map[string]string{
		headerOrigin: "http://a.test",
	})
	r.Host = "example.com:8080"
	r.AddCookie(&http.Cookie{Name: "sid", Value: "s-1"})
	req := NewHTTPRequest(r, false)

	require.Equal(t, "example.com:8080", req.Host())
	require.Equal(t, "http://a.test", req.Origin())
	require.Equal(t, "dGhlIHNhbXBsZSBub25jZQ==", req.SecWebSocketKey())
	require.Equal(t, "13", req.SecWebSocketVersion())
	require.False(t, req.IsSecure())
	require.False(t, req.IsLocal(), "httptest remote addr is not loopback")

	cookies := req.Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "sid", cookies[0].Name)

	require.NotNil(t, req.URL())
	require.Equal(t, "/chat", req.URL().Path)

	// Query order follows the raw query string, not key sorting.
	q := req.Query()
	var keys []string
	q.Each(func(key string, _ []string) bool {
		keys = append(keys, key)
		return true
	})
	require.Equal(t, []string{"b", "a", "empty"}, keys)
	require.Equal(t, []string{"1", "3"}, q.Values("a"))
	require.Equal(t, "", q.Get("empty"))

	h := req.Header()
	require.Equal(t, "websocket", h.Get("upgrade"), "header lookup is case-insensitive")

	// The dump carries the origin-form request line, not the absolute URL.
	require.True(t, strings.HasPrefix(req.String(), "GET /chat?b=2&a=1&a=3&empty= HTTP/1.1"))
	require.Contains(t, req.String(), "Origin: http://a.test")
}

func TestHTTPRequestLocal(t *testing.T) {
	r := upgradeRequest(t, "http://localhost/", nil)
	r.RemoteAddr = "127.0.0.1:53422"
	require.True(t, NewHTTPRequest(r, false).IsLocal())

	r.RemoteAddr = "[::1]:53422"
	require.True(t, NewHTTPRequest(r, false).IsLocal())
}

func TestHTTPResponseWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	resp := &HTTPResponse{W: &buf}

	require.NoError(t, resp.WriteStatus(http.StatusBadRequest))

	got := buf.String()
	require.True(t, strings.HasPrefix(got, "HTTP/1.1 400 Bad Request\r\n"))
	require.Contains(t, got, "Connection: close\r\n")
	require.True(t, strings.HasSuffix(got, "\r\n\r\nBad Request"))

	// The emitted bytes form a response net/http can read back.
	r, err := http.ReadResponse(bufio.NewReader(strings.NewReader(got)), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestUpgradeNotHijacker(t *testing.T) {
	w := httptest.NewRecorder()
	r := upgradeRequest(t, "http://example.com/", nil)

	_, err := Upgrade(r, w, nil)
	require.ErrorIs(t, err, ErrNotHijacker)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUpgradeLive(t *testing.T) {
	done := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := Upgrade(r, w, nil)
		if err != nil {
			done <- err
			return
		}
		if !ctx.IsWebSocketRequest() {
			done <- ctx.CloseWithStatus(http.StatusBadRequest)
			return
		}
		ctx.WebSocket().Negotiate(func(p string) bool { return p == "chat" })
		done <- ctx.WebSocket().Accept(nil)
	}))
	defer srv.Close()

	conn, err := net.Dial("tcp", srv.Listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("" +
		"GET /chat HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n" +
		"Sec-WebSocket-Protocol: chat, superchat\r\n" +
		"\r\n"))
	require.NoError(t, err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	require.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", resp.Header.Get(headerSecAccept))
	require.Equal(t, "chat", resp.Header.Get(headerSecProtocol))

	require.NoError(t, <-done)
}

func TestUpgradeLiveReject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := Upgrade(r, w, nil)
		if err != nil {
			return
		}
		if !ctx.IsWebSocketRequest() {
			ctx.WebSocket().Reject(http.StatusUpgradeRequired)
		}
	}))
	defer srv.Close()

	conn, err := net.Dial("tcp", srv.Listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	// Plain GET, no upgrade headers at all.
	_, err = conn.Write([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"))
	require.NoError(t, err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
