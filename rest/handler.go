// Package rest serves use case interactors over the shell router.
//
// A Handler decodes request parameters into the interactor input port,
// runs the interactor and renders its output port as JSON. Errors are
// rendered as {"status":..., "error":..., "context":...} with an HTTP status
// derived from the use case status code.
package rest

import (
	"context"
	"net/http"
	"reflect"

	"github.com/neurolearn/shell"
	rest2 "github.com/swaggest/rest"
	"github.com/swaggest/usecase"
	"github.com/valyala/fasthttp"
)

var _ shell.Handler = &Handler{}

// NewHandler creates use case http handler.
func NewHandler(useCase usecase.Interactor, options ...func(h *Handler)) *Handler {
	h := &Handler{
		options: options,
	}
	h.SetUseCase(useCase)

	return h
}

// WithSuccessfulResponseCode overrides the status of a successful response.
func WithSuccessfulResponseCode(code int) func(h *Handler) {
	return func(h *Handler) {
		h.SuccessStatus = code
	}
}

// WithDecoderFactory sets request decoder factory, DefaultDecoderFactory is used otherwise.
func WithDecoderFactory(f RequestDecoderFactory) func(h *Handler) {
	return func(h *Handler) {
		h.decoderFactory = f
	}
}

// RequestValidatorFactory creates request validators, jsonschema.Factory of
// github.com/swaggest/rest implements it.
type RequestValidatorFactory interface {
	MakeRequestValidator(method string, input interface{}, mapping rest2.RequestMapping) rest2.Validator
}

// WithRequestValidator checks request body of the method against the
// constraints of the use case input port.
func WithRequestValidator(method string, f RequestValidatorFactory) func(h *Handler) {
	return func(h *Handler) {
		h.method = method

		var withInput usecase.HasInputPort
		if usecase.As(h.useCase, &withInput) && withInput.InputPort() != nil {
			h.ReqValidator = f.MakeRequestValidator(method, withInput.InputPort(), h.ReqMapping)
		}
	}
}

// Handler is a use case http handler.
//
// Please use NewHandler to create instance.
type Handler struct {
	// HandlerTrait.SuccessStatus is 200 by default, or 204 for a use case
	// without output port.
	rest2.HandlerTrait

	method         string
	decoderFactory RequestDecoderFactory
	requestDecoder RequestDecoder

	options []func(h *Handler)

	// failingUseCase passes input decoding error through use case middlewares.
	failingUseCase usecase.Interactor

	useCase usecase.Interactor

	outputBufferType reflect.Type
	inputBufferType  reflect.Type
	skipRendering    bool
}

// UseCase returns use case interactor.
func (h *Handler) UseCase() usecase.Interactor {
	return h.useCase
}

// SetUseCase prepares handler for a use case.
func (h *Handler) SetUseCase(useCase usecase.Interactor) {
	h.useCase = useCase

	for _, option := range h.options {
		option(h)
	}

	h.setupInputBuffer()
	h.setupOutputBuffer()
}

type noContent interface {
	NoContent() bool
}

// ServeHTTP serves request with use case interactor.
func (h *Handler) ServeHTTP(ctx context.Context, rc *fasthttp.RequestCtx) {
	var (
		input, output interface{}
		err           error
	)

	if h.inputBufferType != nil {
		input = reflect.New(h.inputBufferType).Interface()

		if err = h.requestDecoder.Decode(rc, input, h.ReqValidator); err != nil {
			err = invalidArgument(err)

			if h.failingUseCase != nil {
				err = h.failingUseCase.Interact(ctx, "decoding failed", err)
			}

			h.writeError(rc, err)

			return
		}
	}

	if h.outputBufferType != nil {
		output = reflect.New(h.outputBufferType).Interface()
	}

	if err = h.useCase.Interact(ctx, input, output); err != nil {
		h.writeError(rc, err)

		return
	}

	code := h.SuccessStatus
	skipRendering := h.skipRendering

	if nc, ok := output.(noContent); ok && nc.NoContent() {
		skipRendering = true
		code = http.StatusNoContent
	}

	if skipRendering {
		rc.SetStatusCode(code)

		return
	}

	WriteJSON(rc, code, output)
}

func (h *Handler) writeError(rc *fasthttp.RequestCtx, err error) {
	er, code := Err(err)
	WriteJSON(rc, code, er)
}

func (h *Handler) setupInputBuffer() {
	h.inputBufferType = nil

	var withInput usecase.HasInputPort
	if !usecase.As(h.useCase, &withInput) {
		return
	}

	in := withInput.InputPort()
	if in == nil {
		return
	}

	h.inputBufferType = reflect.TypeOf(in)
	if h.inputBufferType.Kind() == reflect.Ptr {
		h.inputBufferType = h.inputBufferType.Elem()
	}

	f := h.decoderFactory
	if f == nil {
		f = DefaultDecoderFactory
	}

	h.requestDecoder = f.MakeDecoder(h.method, in)
}

func (h *Handler) setupOutputBuffer() {
	h.outputBufferType = nil
	h.skipRendering = false

	var withOutput usecase.HasOutputPort
	if usecase.As(h.useCase, &withOutput) && withOutput.OutputPort() != nil {
		h.outputBufferType = reflect.TypeOf(withOutput.OutputPort())
		if h.outputBufferType.Kind() == reflect.Ptr {
			h.outputBufferType = h.outputBufferType.Elem()
		}
	} else {
		h.skipRendering = true
	}

	if h.SuccessStatus != 0 {
		return
	}

	if h.outputBufferType == nil {
		h.SuccessStatus = http.StatusNoContent
	} else {
		h.SuccessStatus = http.StatusOK
	}
}
