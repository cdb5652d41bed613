package shell

import (
	"fmt"
	"strings"
)

type methodTyp uint

const (
	mSTUB methodTyp = 1 << iota
	mCONNECT
	mDELETE
	mGET
	mHEAD
	mOPTIONS
	mPATCH
	mPOST
	mPUT
	mTRACE
)

var mALL = mCONNECT | mDELETE | mGET | mHEAD |
	mOPTIONS | mPATCH | mPOST | mPUT | mTRACE

var methodMap = map[string]methodTyp{
	"CONNECT": mCONNECT,
	"DELETE":  mDELETE,
	"GET":     mGET,
	"HEAD":    mHEAD,
	"OPTIONS": mOPTIONS,
	"PATCH":   mPATCH,
	"POST":    mPOST,
	"PUT":     mPUT,
	"TRACE":   mTRACE,
}

// RegisterMethod adds support for custom HTTP method handlers, available
// via Router#Method and Router#MethodFunc.
func RegisterMethod(method string) {
	if method == "" {
		return
	}

	method = strings.ToUpper(method)
	if _, ok := methodMap[method]; ok {
		return
	}

	n := len(methodMap)
	if n > strings.Count(fmt.Sprintf("%b", ^uint(0)), "1")-2 {
		panic(fmt.Sprintf("shell: max number of methods reached (%d)", n))
	}

	mt := methodTyp(2 << n)
	methodMap[method] = mt
	mALL |= mt
}

// route is a single row of the routing table.
type route struct {
	pattern   string
	segments  []string
	wildcard  bool
	handlers  map[methodTyp]Handler
	subroutes Routes
}

// table is an ordered list of routes, first match wins.
type table struct {
	routes []*route
	index  map[string]*route
}

func parsePattern(pattern string) (segments []string, wildcard bool) {
	p := pattern[1:]

	if strings.HasSuffix(p, "*") {
		if p != "*" && !strings.HasSuffix(p, "/*") {
			panic(fmt.Sprintf("shell: wildcard '*' must be the last value in a route, '%s'", pattern))
		}

		wildcard = true
		p = strings.TrimSuffix(strings.TrimSuffix(p, "*"), "/")

		if p == "" {
			return nil, wildcard
		}
	}

	if strings.Contains(p, "*") {
		panic(fmt.Sprintf("shell: wildcard '*' must be the last value in a route, '%s'", pattern))
	}

	return strings.Split(p, "/"), wildcard
}

// InsertRoute adds an endpoint handler for a method and pattern, replacing
// the handler previously registered for the same method and pattern.
func (t *table) InsertRoute(method methodTyp, pattern string, handler Handler) *route {
	if t.index == nil {
		t.index = make(map[string]*route)
	}

	r, ok := t.index[pattern]
	if !ok {
		segments, wildcard := parsePattern(pattern)

		for _, s := range segments {
			if strings.HasPrefix(s, "{") != strings.HasSuffix(s, "}") {
				panic(fmt.Sprintf("shell: route param closing delimiter '}' is missing in '%s'", pattern))
			}
		}

		r = &route{
			pattern:  pattern,
			segments: segments,
			wildcard: wildcard,
			handlers: make(map[methodTyp]Handler),
		}

		t.index[pattern] = r
		t.routes = append(t.routes, r)
	}

	if method&mSTUB == mSTUB {
		r.handlers[mSTUB] = handler
	}

	if method&mALL == mALL {
		r.handlers[mALL] = handler

		return r
	}

	for _, m := range methodMap {
		if method&m == m {
			r.handlers[m] = handler
		}
	}

	return r
}

// match tells whether path segments satisfy the route and collects params.
func (r *route) match(path []string, params *RouteParams) bool {
	if len(path) < len(r.segments) {
		return false
	}

	if !r.wildcard && len(path) != len(r.segments) {
		return false
	}

	if r.wildcard && len(path) == len(r.segments) {
		return false
	}

	start := len(params.Keys)

	for i, seg := range r.segments {
		if strings.HasPrefix(seg, "{") {
			if path[i] == "" {
				params.Keys, params.Values = params.Keys[:start], params.Values[:start]

				return false
			}

			params.Add(seg[1:len(seg)-1], path[i])

			continue
		}

		if seg != path[i] {
			params.Keys, params.Values = params.Keys[:start], params.Values[:start]

			return false
		}
	}

	if r.wildcard {
		params.Add("*", strings.Join(path[len(r.segments):], "/"))
	}

	return true
}

func (r *route) handler(method methodTyp) Handler {
	if h, ok := r.handlers[method]; ok {
		return h
	}

	return r.handlers[mALL]
}

// FindRoute walks the table in registration order and returns the first
// route that matches both path and method. The routing context records the
// route params and pattern, or the method-not-allowed hint when only the
// path matched.
func (t *table) FindRoute(rctx *Context, method methodTyp, path string) (*route, Handler) {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")

	for _, r := range t.routes {
		var params RouteParams

		if !r.match(segments, &params) {
			continue
		}

		h := r.handler(method)
		if h == nil {
			rctx.methodNotAllowed = true

			continue
		}

		rctx.routeParams = params
		rctx.URLParams.Keys = append(rctx.URLParams.Keys, params.Keys...)
		rctx.URLParams.Values = append(rctx.URLParams.Values, params.Values...)
		rctx.routePattern = r.pattern
		rctx.RoutePatterns = append(rctx.RoutePatterns, r.pattern)

		return r, h
	}

	return nil, nil
}

func (t *table) findPattern(pattern string) bool {
	_, ok := t.index[pattern]

	return ok
}

func (t *table) list() []Route {
	routes := make([]Route, 0, len(t.routes))

	for _, r := range t.routes {
		hs := make(map[string]Handler, len(r.handlers))

		for m, h := range r.handlers {
			if m == mALL {
				hs["*"] = h

				continue
			}

			if m == mSTUB {
				continue
			}

			for name, mt := range methodMap {
				if mt == m {
					hs[name] = h
				}
			}
		}

		routes = append(routes, Route{SubRoutes: r.subroutes, Handlers: hs, Pattern: r.pattern})
	}

	return routes
}
