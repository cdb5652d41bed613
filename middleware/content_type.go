package middleware

import (
	"bytes"
	"context"
	"strings"

	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
)

// AllowContentType rejects requests with a body whose Content-Type is not
// one of contentTypes with 415 Unsupported Media Type. Parameters such as
// charset are ignored.
func AllowContentType(contentTypes ...string) func(next shell.Handler) shell.Handler {
	allowed := make(map[string]struct{}, len(contentTypes))
	for _, ct := range contentTypes {
		allowed[strings.TrimSpace(strings.ToLower(ct))] = struct{}{}
	}

	return func(next shell.Handler) shell.Handler {
		return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
			if len(rc.Request.Body()) == 0 {
				next.ServeHTTP(ctx, rc)

				return
			}

			ct := rc.Request.Header.ContentType()
			if i := bytes.IndexByte(ct, ';'); i >= 0 {
				ct = ct[:i]
			}

			if _, ok := allowed[strings.ToLower(string(bytes.TrimSpace(ct)))]; !ok {
				rc.SetStatusCode(fasthttp.StatusUnsupportedMediaType)

				return
			}

			next.ServeHTTP(ctx, rc)
		})
	}
}
