package middleware

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/neurolearn/shell"
	"github.com/valyala/fasthttp"
)

// Profiler serves net/http/pprof and expvar, mount it on a router:
//
//	r.Mount("/debug", middleware.Profiler())
func Profiler() shell.Handler {
	r := shell.NewRouter()
	r.Use(NoCache)

	toIndex := shell.HandlerFunc(func(_ context.Context, rc *fasthttp.RequestCtx) {
		rc.Redirect(string(rc.Request.URI().RequestURI())+"/pprof/", fasthttp.StatusMovedPermanently)
	})

	r.Get("/", toIndex)
	r.Handle("/pprof", toIndex)

	r.Handle("/pprof/cmdline", shell.Adapt(http.HandlerFunc(pprof.Cmdline)))
	r.Handle("/pprof/profile", shell.Adapt(http.HandlerFunc(pprof.Profile)))
	r.Handle("/pprof/symbol", shell.Adapt(http.HandlerFunc(pprof.Symbol)))
	r.Handle("/pprof/trace", shell.Adapt(http.HandlerFunc(pprof.Trace)))

	for _, name := range []string{"goroutine", "threadcreate", "mutex", "heap", "block", "allocs"} {
		r.Handle("/pprof/"+name, shell.Adapt(pprof.Handler(name)))
	}

	r.Handle("/pprof/*", shell.Adapt(http.HandlerFunc(pprof.Index)))
	r.Handle("/vars", shell.HandlerFunc(expVars))

	return r
}

// expVars writes expvar variables as JSON, expvar does not export its handler
// for non net/http servers.
func expVars(_ context.Context, rc *fasthttp.RequestCtx) {
	rc.SetContentType("application/json; charset=utf-8")

	w := rc.Response.BodyWriter()
	first := true

	fmt.Fprint(w, "{\n")
	expvar.Do(func(kv expvar.KeyValue) {
		if !first {
			fmt.Fprint(w, ",\n")
		}

		first = false

		fmt.Fprintf(w, "%q: %s", kv.Key, kv.Value)
	})
	fmt.Fprint(w, "\n}\n")
}
