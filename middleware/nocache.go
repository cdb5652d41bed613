package middleware

import (
	"context"

	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
)

var noCacheHeaders = map[string]string{
	"Expires":         "Thu, 01 Jan 1970 00:00:00 UTC",
	"Cache-Control":   "no-cache, no-store, no-transform, must-revalidate, private, max-age=0",
	"Pragma":          "no-cache",
	"X-Accel-Expires": "0",
}

var etagHeaders = []string{
	"ETag",
	"If-Modified-Since",
	"If-Match",
	"If-None-Match",
	"If-Range",
	"If-Unmodified-Since",
}

// NoCache strips conditional request headers and sets response headers
// that keep clients and proxies from caching the response.
func NoCache(next shell.Handler) shell.Handler {
	return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
		for _, h := range etagHeaders {
			rc.Request.Header.Del(h)
		}

		for k, v := range noCacheHeaders {
			rc.Response.Header.Set(k, v)
		}

		next.ServeHTTP(ctx, rc)
	})
}
