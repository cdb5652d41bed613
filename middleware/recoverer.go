package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Recoverer turns a handler panic into 500 Internal Server Error and logs
// it with the stack trace.
func Recoverer(logger *zap.Logger) func(next shell.Handler) shell.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next shell.Handler) shell.Handler {
		return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}

				if err, ok := rvr.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rvr)
				}

				logger.Error("panic recovered",
					zap.Any("panic", rvr),
					zap.ByteString("method", rc.Method()),
					zap.ByteString("path", rc.Path()),
					zap.String("request_id", GetRequestID(ctx)),
					zap.Stack("stack"),
				)

				rc.ResetBody()
				rc.Error(fasthttp.StatusMessage(fasthttp.StatusInternalServerError), fasthttp.StatusInternalServerError)
			}()

			next.ServeHTTP(ctx, rc)
		})
	}
}
