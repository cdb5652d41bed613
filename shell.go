// Package shell is a small, composable router for fasthttp services.
//
// It routes a request through an ordered route table to an endpoint handler,
// running the mux middleware stack first. Patterns are matched segment by
// segment: static segments match exactly, "{name}" captures one non-empty
// segment, and a trailing "*" captures the rest of the path. The first
// registered route that matches wins.
//
// The package also hosts the web shell of NeuroLearn: the view table in
// package view is mounted on a Mux next to the resource API.
package shell

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// NewRouter returns a new Mux object that implements the Router interface.
func NewRouter() *Mux {
	return NewMux()
}

// Handler serves a fasthttp request with a request-scoped context.
type Handler interface {
	ServeHTTP(ctx context.Context, rc *fasthttp.RequestCtx)
}

// HandlerFunc is an adapter to use ordinary functions as Handler.
type HandlerFunc func(ctx context.Context, rc *fasthttp.RequestCtx)

// ServeHTTP calls f(ctx, rc).
func (f HandlerFunc) ServeHTTP(ctx context.Context, rc *fasthttp.RequestCtx) {
	f(ctx, rc)
}

// Router consisting of the core routing methods used by shell's Mux.
type Router interface {
	Handler
	Routes

	// Use appends one or more middlewares onto the Router stack.
	Use(middlewares ...func(Handler) Handler)

	// With adds inline middlewares for an endpoint handler.
	With(middlewares ...func(Handler) Handler) Router

	// Group adds a new inline-Router along the current routing
	// path, with a fresh middleware stack for the inline-Router.
	Group(fn func(r Router)) Router

	// Route mounts a sub-Router along a `pattern` string.
	Route(pattern string, fn func(r Router)) Router

	// Mount attaches another Handler along ./pattern/*
	Mount(pattern string, h Handler)

	// Handle and Method add routes for `pattern` that matches
	// all HTTP methods or the given method.
	Handle(pattern string, h Handler)
	Method(method, pattern string, h Handler)

	// HTTP-method routing along `pattern`
	Connect(pattern string, h Handler)
	Delete(pattern string, h Handler)
	Get(pattern string, h Handler)
	Head(pattern string, h Handler)
	Options(pattern string, h Handler)
	Patch(pattern string, h Handler)
	Post(pattern string, h Handler)
	Put(pattern string, h Handler)
	Trace(pattern string, h Handler)

	// NotFound defines a handler to respond whenever a route could
	// not be found.
	NotFound(h Handler)

	// MethodNotAllowed defines a handler to respond whenever a method is
	// not allowed.
	MethodNotAllowed(h Handler)
}

// Routes interface adds methods for router traversal.
type Routes interface {
	// Routes returns the routing table.
	Routes() []Route

	// Middlewares returns the list of middlewares in use by the router.
	Middlewares() Middlewares

	// Match searches the routing table for a handler that matches
	// the method/path - similar to routing a http request, but without
	// executing the handler thereafter.
	Match(rctx *Context, method, path string) bool
}

// Middlewares type is a slice of standard middleware handlers with methods
// to compose middleware chains and Handler's.
type Middlewares []func(Handler) Handler

// Route describes the details of a routing handler.
type Route struct {
	SubRoutes Routes
	Handlers  map[string]Handler
	Pattern   string
}

// RequestHandler converts Handler into fasthttp.RequestHandler.
//
// The request context itself serves as the root context.Context.
func RequestHandler(h Handler) fasthttp.RequestHandler {
	return func(rc *fasthttp.RequestCtx) {
		h.ServeHTTP(rc, rc)
	}
}

// Adapt wraps net/http handler into Handler.
func Adapt(h http.Handler) Handler {
	fh := fasthttpadaptor.NewFastHTTPHandler(h)

	return HandlerFunc(func(_ context.Context, rc *fasthttp.RequestCtx) {
		fh(rc)
	})
}
