package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID assigns an id to every request, the id received in
// X-Request-Id is kept, otherwise a random UUID is generated.
// The id is echoed in the response and stored in the request context.
func RequestID(next shell.Handler) shell.Handler {
	return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
		id := string(rc.Request.Header.Peek(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}

		rc.Response.Header.Set(RequestIDHeader, id)

		next.ServeHTTP(context.WithValue(ctx, requestIDKey{}, id), rc)
	})
}

// GetRequestID returns request id stored by RequestID.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}
