package middleware

import (
	"context"

	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
)

const corsMaxAge = "600"

// CORS allows cross-origin requests from any origin with any method and
// headers, credentials included. Preflight requests are answered without
// reaching the router.
func CORS(next shell.Handler) shell.Handler {
	return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
		origin := rc.Request.Header.Peek(fasthttp.HeaderOrigin)
		if len(origin) == 0 {
			next.ServeHTTP(ctx, rc)

			return
		}

		h := &rc.Response.Header
		h.SetBytesV(fasthttp.HeaderAccessControlAllowOrigin, origin)
		h.Set(fasthttp.HeaderAccessControlAllowCredentials, "true")
		h.Add(fasthttp.HeaderVary, fasthttp.HeaderOrigin)

		reqMethod := rc.Request.Header.Peek(fasthttp.HeaderAccessControlRequestMethod)
		if !rc.IsOptions() || len(reqMethod) == 0 {
			next.ServeHTTP(ctx, rc)

			return
		}

		h.SetBytesV(fasthttp.HeaderAccessControlAllowMethods, reqMethod)

		if reqHeaders := rc.Request.Header.Peek(fasthttp.HeaderAccessControlRequestHeaders); len(reqHeaders) > 0 {
			h.SetBytesV(fasthttp.HeaderAccessControlAllowHeaders, reqHeaders)
		}

		h.Set(fasthttp.HeaderAccessControlMaxAge, corsMaxAge)
		rc.SetStatusCode(fasthttp.StatusOK)
	})
}
