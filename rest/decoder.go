package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/neurolearn/shell"
	"github.com/swaggest/form/v5"
	"github.com/swaggest/refl"
	rest2 "github.com/swaggest/rest"
	"github.com/valyala/fasthttp"
)

// RequestDecoder maps data from fasthttp.RequestCtx into structured Go input value.
type RequestDecoder interface {
	Decode(rc *fasthttp.RequestCtx, input interface{}, validator rest2.Validator) error
}

// RequestDecoderFactory creates request decoder for particular structured Go input value.
type RequestDecoderFactory interface {
	MakeDecoder(method string, input interface{}) RequestDecoder
}

// DefaultDecoderFactory reads `path` and `query` tagged fields and JSON body.
var DefaultDecoderFactory RequestDecoderFactory = NewDecoderFactory()

type valuesFunc func(rc *fasthttp.RequestCtx) url.Values

// DecoderFactory decodes path parameters, query parameters and JSON body.
//
// Fields tagged with `path:"name"` take the value of the {name} route
// parameter, fields tagged with `query:"name"` take the query parameter.
// JSON body is decoded for POST, PUT and PATCH requests when the input
// has `json` tags or is a slice or a map.
type DecoderFactory struct {
	sources []paramSource
}

type paramSource struct {
	in      rest2.ParamIn
	dec     *form.Decoder
	collect valuesFunc
}

// NewDecoderFactory creates request decoder factory.
func NewDecoderFactory() *DecoderFactory {
	f := &DecoderFactory{}

	for in, collect := range map[rest2.ParamIn]valuesFunc{
		rest2.ParamInPath:  pathValues,
		rest2.ParamInQuery: queryValues,
	} {
		dec := form.NewDecoder()
		dec.SetTagName(string(in))
		dec.SetMode(form.ModeExplicit)

		f.sources = append(f.sources, paramSource{in: in, dec: dec, collect: collect})
	}

	return f
}

// MakeDecoder creates RequestDecoder for a method and an input value.
//
// Only requests with body semantics (POST, PUT, PATCH) have JSON body decoded.
func (f *DecoderFactory) MakeDecoder(method string, input interface{}) RequestDecoder {
	d := decoder{}

	for _, s := range f.sources {
		if refl.HasTaggedFields(input, string(s.in)) {
			d.sources = append(d.sources, s)
		}
	}

	// Empty method leaves the choice to the request.
	switch method {
	case "", fasthttp.MethodPost, fasthttp.MethodPut, fasthttp.MethodPatch:
		d.body = refl.HasTaggedFields(input, "json") || refl.IsSliceOrMap(input)
	}

	return &d
}

type decoder struct {
	sources []paramSource
	body    bool
}

// Decode populates input with data from request and checks JSON body
// against validator constraints.
func (d *decoder) Decode(rc *fasthttp.RequestCtx, input interface{}, validator rest2.Validator) error {
	for _, s := range d.sources {
		values := s.collect(rc)
		if len(values) == 0 {
			continue
		}

		if err := s.dec.Decode(input, values); err != nil {
			return requestErrors(s.in, err)
		}
	}

	if !d.body || !(rc.IsPost() || rc.IsPut() || rc.IsPatch()) {
		return nil
	}

	body, err := jsonBody(rc)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, input); err != nil {
		return fmt.Errorf("failed to decode json: %w", err)
	}

	if validator != nil && validator.HasConstraints(rest2.ParamInBody) {
		return validator.ValidateJSONBody(body)
	}

	return nil
}

func jsonBody(rc *fasthttp.RequestCtx) ([]byte, error) {
	body := rc.Request.Body()
	if len(body) == 0 {
		return nil, errors.New("missing request body to decode json")
	}

	// Allows "application/json; charset=UTF-8".
	if ct := rc.Request.Header.ContentType(); len(ct) > 0 && !bytes.HasPrefix(ct, []byte("application/json")) {
		return nil, fmt.Errorf(`request with "application/json" content type expected, %q received`, ct)
	}

	return body, nil
}

// requestErrors names failed form fields by their location.
func requestErrors(in rest2.ParamIn, err error) error {
	var de form.DecodeErrors
	if !errors.As(err, &de) {
		return fmt.Errorf("%s: %w", in, err)
	}

	errs := make(rest2.RequestErrors, len(de))
	for name, e := range de {
		errs[string(in)+":"+name] = []string{e.Error()}
	}

	return errs
}

func pathValues(rc *fasthttp.RequestCtx) url.Values {
	rctx := shell.RouteContext(rc)
	if rctx == nil {
		return nil
	}

	params := make(url.Values, len(rctx.URLParams.Keys))

	for i, k := range rctx.URLParams.Keys {
		if k == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}

		params[k] = []string{rctx.URLParams.Values[i]}
	}

	return params
}

func queryValues(rc *fasthttp.RequestCtx) url.Values {
	var params url.Values

	rc.QueryArgs().VisitAll(func(key, value []byte) {
		if params == nil {
			params = make(url.Values, 1)
		}

		params.Add(string(key), string(value))
	})

	return params
}
