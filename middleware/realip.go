package middleware

import (
	"bytes"
	"context"
	"net"

	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
)

const (
	headerRealIP       = "X-Real-IP"
	headerForwardedFor = "X-Forwarded-For"
)

// RealIP replaces the remote address of a request with the client address
// reported by a reverse proxy in X-Real-IP or, failing that, the first
// address of X-Forwarded-For.
//
// Use it early in the stack so that the access log sees the client address.
// The headers are trusted blindly, so only enable it behind a proxy that
// overwrites them.
func RealIP(next shell.Handler) shell.Handler {
	return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
		if ip := net.ParseIP(realIP(&rc.Request.Header)); ip != nil {
			rc.SetRemoteAddr(&net.TCPAddr{IP: ip})
		}

		next.ServeHTTP(ctx, rc)
	})
}

func realIP(h *fasthttp.RequestHeader) string {
	if v := h.Peek(headerRealIP); len(v) > 0 {
		return string(bytes.TrimSpace(v))
	}

	xff := h.Peek(headerForwardedFor)
	if i := bytes.IndexByte(xff, ','); i >= 0 {
		xff = xff[:i]
	}

	return string(bytes.TrimSpace(xff))
}
