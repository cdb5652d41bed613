package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
)

// Timeout derives a request context that expires after timeout and
// replaces the response with 504 Gateway Timeout if the handler returns
// after the deadline passed.
//
// Handlers must watch ctx.Done() for the deadline to take effect, for
// example the resource store passes it to the HTTP client.
func Timeout(timeout time.Duration) func(next shell.Handler) shell.Handler {
	return func(next shell.Handler) shell.Handler {
		return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			next.ServeHTTP(ctx, rc)

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				rc.Response.ResetBody()
				rc.Response.Header.Del(fasthttp.HeaderContentEncoding)
				rc.SetContentType("text/plain; charset=utf-8")
				rc.SetStatusCode(fasthttp.StatusGatewayTimeout)
				rc.SetBodyString(fasthttp.StatusMessage(fasthttp.StatusGatewayTimeout))
			}
		})
	}
}
