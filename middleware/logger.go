package middleware

import (
	"context"
	"time"

	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Logger writes an access log entry for every request.
func Logger(logger *zap.Logger) func(next shell.Handler) shell.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next shell.Handler) shell.Handler {
		return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
			start := time.Now()

			next.ServeHTTP(ctx, rc)

			status := rc.Response.StatusCode()
			fields := []zap.Field{
				zap.ByteString("method", rc.Method()),
				zap.ByteString("path", rc.Path()),
				zap.Int("status", status),
				zap.Int("bytes", len(rc.Response.Body())),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", rc.RemoteIP().String()),
			}

			if id := GetRequestID(ctx); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}

			switch {
			case status >= fasthttp.StatusInternalServerError:
				logger.Error("request", fields...)
			case status >= fasthttp.StatusBadRequest:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}
