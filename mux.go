package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/valyala/fasthttp"
)

var _ Router = &Mux{}

// Mux routes requests through an ordered route table after running its
// middleware stack.
//
// A Mux created by With or Group is inline: it shares the table of its
// parent and wraps each endpoint it registers with its own middlewares.
type Mux struct {
	table  *table
	parent *Mux
	inline bool

	middlewares Middlewares

	// handler is middlewares around routeHTTP, built on first route.
	handler Handler

	notFoundHandler         Handler
	methodNotAllowedHandler Handler

	pool *sync.Pool
}

// NewMux returns an empty root Mux.
func NewMux() *Mux {
	return &Mux{
		table: &table{},
		pool: &sync.Pool{New: func() interface{} {
			return NewRouteContext()
		}},
	}
}

// ServeHTTP routes the request. The routing context is taken from the pool
// unless a parent router already attached one.
func (mx *Mux) ServeHTTP(ctx context.Context, rc *fasthttp.RequestCtx) {
	if mx.handler == nil {
		mx.NotFoundHandler().ServeHTTP(ctx, rc)

		return
	}

	if RouteContext(rc) != nil {
		mx.handler.ServeHTTP(ctx, rc)

		return
	}

	rctx := mx.pool.Get().(*Context)
	rctx.Reset()
	rctx.Routes = mx

	rc.SetUserValue(routeUserValueKey, rctx)
	mx.handler.ServeHTTP(ctx, rc)
	rc.RemoveUserValue(routeUserValueKey)

	mx.pool.Put(rctx)
}

// Use appends middlewares to the stack, it panics once routes are registered.
func (mx *Mux) Use(middlewares ...func(Handler) Handler) {
	if mx.handler != nil {
		panic("shell: all middlewares must be defined before routes on a mux")
	}

	mx.middlewares = append(mx.middlewares, middlewares...)
}

// Handle registers handler for any method.
func (mx *Mux) Handle(pattern string, handler Handler) { mx.handle(mALL, pattern, handler) }

// Method registers handler for a method by name, see RegisterMethod.
func (mx *Mux) Method(method, pattern string, handler Handler) {
	m, ok := methodMap[strings.ToUpper(method)]
	if !ok {
		panic(fmt.Sprintf("shell: '%s' http method is not supported.", method))
	}

	mx.handle(m, pattern, handler)
}

// Connect registers a CONNECT handler.
func (mx *Mux) Connect(pattern string, handler Handler) { mx.handle(mCONNECT, pattern, handler) }

// Delete registers a DELETE handler.
func (mx *Mux) Delete(pattern string, handler Handler) { mx.handle(mDELETE, pattern, handler) }

// Get registers a GET handler.
func (mx *Mux) Get(pattern string, handler Handler) { mx.handle(mGET, pattern, handler) }

// Head registers a HEAD handler.
func (mx *Mux) Head(pattern string, handler Handler) { mx.handle(mHEAD, pattern, handler) }

// Options registers an OPTIONS handler.
func (mx *Mux) Options(pattern string, handler Handler) { mx.handle(mOPTIONS, pattern, handler) }

// Patch registers a PATCH handler.
func (mx *Mux) Patch(pattern string, handler Handler) { mx.handle(mPATCH, pattern, handler) }

// Post registers a POST handler.
func (mx *Mux) Post(pattern string, handler Handler) { mx.handle(mPOST, pattern, handler) }

// Put registers a PUT handler.
func (mx *Mux) Put(pattern string, handler Handler) { mx.handle(mPUT, pattern, handler) }

// Trace registers a TRACE handler.
func (mx *Mux) Trace(pattern string, handler Handler) { mx.handle(mTRACE, pattern, handler) }

// NotFound sets the handler for paths without a route. Mounted sub-routers
// without their own handler inherit it.
func (mx *Mux) NotFound(handler Handler) {
	m, handler := mx.fallbackOwner(handler)
	m.notFoundHandler = handler

	m.eachSubMux(func(sub *Mux) {
		if sub.notFoundHandler == nil {
			sub.NotFound(handler)
		}
	})
}

// MethodNotAllowed sets the handler for paths that have a route, but not
// for the request method. Mounted sub-routers without their own handler
// inherit it.
func (mx *Mux) MethodNotAllowed(handler Handler) {
	m, handler := mx.fallbackOwner(handler)
	m.methodNotAllowedHandler = handler

	m.eachSubMux(func(sub *Mux) {
		if sub.methodNotAllowedHandler == nil {
			sub.MethodNotAllowed(handler)
		}
	})
}

// fallbackOwner returns the mux that keeps fallback handlers, an inline mux
// delegates to its parent and wraps handler with its middlewares.
func (mx *Mux) fallbackOwner(handler Handler) (*Mux, Handler) {
	if mx.inline && mx.parent != nil {
		return mx.parent, mx.middlewares.Handler(handler)
	}

	return mx, handler
}

// With returns an inline router that adds middlewares to the endpoints it
// registers.
func (mx *Mux) With(middlewares ...func(Handler) Handler) Router {
	if !mx.inline && mx.handler == nil {
		mx.buildHandler()
	}

	var mws Middlewares
	if mx.inline {
		mws = append(mws, mx.middlewares...)
	}

	return &Mux{
		table:                   mx.table,
		parent:                  mx,
		inline:                  true,
		middlewares:             append(mws, middlewares...),
		notFoundHandler:         mx.notFoundHandler,
		methodNotAllowedHandler: mx.methodNotAllowedHandler,
		pool:                    mx.pool,
	}
}

// Group calls fn with an inline router that has its own middleware stack.
func (mx *Mux) Group(fn func(r Router)) Router {
	im := mx.With()
	if fn != nil {
		fn(im)
	}

	return im
}

// Route mounts a new sub-router at pattern after fn has set it up.
func (mx *Mux) Route(pattern string, fn func(r Router)) Router {
	if fn == nil {
		panic(fmt.Sprintf("shell: attempting to Route() a nil subrouter on '%s'", pattern))
	}

	sub := NewRouter()
	fn(sub)
	mx.Mount(pattern, sub)

	return sub
}

// Mount delegates pattern and everything below it to handler. The handler
// sees the path remaining after pattern. Mounting twice on the same
// pattern panics.
func (mx *Mux) Mount(pattern string, handler Handler) {
	if handler == nil {
		panic(fmt.Sprintf("shell: attempting to Mount() a nil handler on '%s'", pattern))
	}

	if mx.table.findPattern(pattern+"*") || mx.table.findPattern(pattern+"/*") {
		panic(fmt.Sprintf("shell: attempting to Mount() a handler on an existing path, '%s'", pattern))
	}

	if sub, ok := handler.(*Mux); ok {
		if sub.notFoundHandler == nil && mx.notFoundHandler != nil {
			sub.NotFound(mx.notFoundHandler)
		}

		if sub.methodNotAllowedHandler == nil && mx.methodNotAllowedHandler != nil {
			sub.MethodNotAllowed(mx.methodNotAllowedHandler)
		}
	}

	mounted := HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
		rctx := RouteContext(rc)
		rctx.RoutePath = mx.nextRoutePath(rctx)

		// The "*" param that led here is consumed by the sub-router.
		if n := len(rctx.URLParams.Keys) - 1; n >= 0 && rctx.URLParams.Keys[n] == "*" && len(rctx.URLParams.Values) > n {
			rctx.URLParams.Values[n] = ""
		}

		handler.ServeHTTP(ctx, rc)
	})

	if pattern == "" || !strings.HasSuffix(pattern, "/") {
		mx.handle(mALL|mSTUB, pattern, mounted)
		mx.handle(mALL|mSTUB, pattern+"/", mounted)
		pattern += "/"
	}

	subroutes, _ := handler.(Routes)

	method := mALL
	if subroutes != nil {
		method |= mSTUB
	}

	if r := mx.handle(method, pattern+"*", mounted); subroutes != nil {
		r.subroutes = subroutes
	}
}

// Routes lists the route table in registration order.
func (mx *Mux) Routes() []Route {
	return mx.table.list()
}

// Middlewares returns the middleware stack.
func (mx *Mux) Middlewares() Middlewares {
	return mx.middlewares
}

// Match reports whether a route serves method and path, descending into
// mounted sub-routers. It updates rctx like routing a request would.
func (mx *Mux) Match(rctx *Context, method, path string) bool {
	m, ok := methodMap[method]
	if !ok {
		return false
	}

	r, h := mx.table.FindRoute(rctx, m, path)
	if r != nil && r.subroutes != nil {
		rctx.RoutePath = mx.nextRoutePath(rctx)

		return r.subroutes.Match(rctx, method, rctx.RoutePath)
	}

	return h != nil
}

// NotFoundHandler returns the 404 handler, a plain text responder unless
// NotFound was called.
func (mx *Mux) NotFoundHandler() Handler {
	if mx.notFoundHandler != nil {
		return mx.notFoundHandler
	}

	return HandlerFunc(func(_ context.Context, rc *fasthttp.RequestCtx) {
		rc.SetStatusCode(fasthttp.StatusNotFound)
		rc.SetContentType("text/plain; charset=utf-8")
		rc.SetBodyString("404 page not found")
	})
}

// MethodNotAllowedHandler returns the 405 handler, an empty response unless
// MethodNotAllowed was called.
func (mx *Mux) MethodNotAllowedHandler() Handler {
	if mx.methodNotAllowedHandler != nil {
		return mx.methodNotAllowedHandler
	}

	return HandlerFunc(func(_ context.Context, rc *fasthttp.RequestCtx) {
		rc.SetStatusCode(fasthttp.StatusMethodNotAllowed)
	})
}

func (mx *Mux) handle(method methodTyp, pattern string, handler Handler) *route {
	if pattern == "" || pattern[0] != '/' {
		panic(fmt.Sprintf("shell: routing pattern must begin with '/' in '%s'", pattern))
	}

	if mx.inline {
		mx.handler = HandlerFunc(mx.routeHTTP)
		handler = mx.middlewares.Handler(handler)
	} else if mx.handler == nil {
		mx.buildHandler()
	}

	return mx.table.InsertRoute(method, pattern, handler)
}

// routeHTTP serves the first route of the table matching the routing path,
// or a 404 or 405 response.
func (mx *Mux) routeHTTP(ctx context.Context, rc *fasthttp.RequestCtx) {
	rctx := RouteContext(rc)

	path := rctx.RoutePath
	if path == "" {
		if path = string(rc.URI().PathOriginal()); path == "" {
			path = "/"
		}
	}

	if rctx.RouteMethod == "" {
		rctx.RouteMethod = string(rc.Method())
	}

	method, ok := methodMap[rctx.RouteMethod]
	if !ok {
		mx.MethodNotAllowedHandler().ServeHTTP(ctx, rc)

		return
	}

	if _, h := mx.table.FindRoute(rctx, method, path); h != nil {
		h.ServeHTTP(ctx, rc)

		return
	}

	if rctx.methodNotAllowed {
		mx.MethodNotAllowedHandler().ServeHTTP(ctx, rc)
	} else {
		mx.NotFoundHandler().ServeHTTP(ctx, rc)
	}
}

// nextRoutePath is the path left for a sub-router, taken from the last
// wildcard param.
func (mx *Mux) nextRoutePath(rctx *Context) string {
	keys, values := rctx.routeParams.Keys, rctx.routeParams.Values
	if n := len(keys) - 1; n >= 0 && keys[n] == "*" && len(values) > n {
		return "/" + values[n]
	}

	return "/"
}

func (mx *Mux) eachSubMux(fn func(sub *Mux)) {
	for _, r := range mx.table.list() {
		if sub, ok := r.SubRoutes.(*Mux); ok {
			fn(sub)
		}
	}
}

// buildHandler freezes the middleware stack around routeHTTP.
func (mx *Mux) buildHandler() {
	mx.handler = mx.middlewares.wrap(HandlerFunc(mx.routeHTTP))
}

// Chain groups middlewares, the first one is the outermost.
func Chain(middlewares ...func(Handler) Handler) Middlewares {
	return middlewares
}

// Handler wraps endpoint with the middlewares.
//
// The result implements Wrapper, so the endpoint stays reachable.
func (mws Middlewares) Handler(endpoint Handler) Handler {
	if len(mws) == 0 {
		return endpoint
	}

	return &wrapped{Handler: mws.wrap(endpoint), endpoint: endpoint}
}

func (mws Middlewares) wrap(h Handler) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}

	return h
}

// Wrapper is a handler that decorates another one.
type Wrapper interface {
	Unwrap() Handler
}

type wrapped struct {
	Handler
	endpoint Handler
}

// Unwrap returns the endpoint behind middlewares.
func (w *wrapped) Unwrap() Handler {
	return w.endpoint
}
