package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/neurolearn/shell"
	"github.com/neurolearn/shell/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggest/rest/jsonschema"
	"github.com/swaggest/rest/openapi"
	"github.com/swaggest/usecase"
	"github.com/swaggest/usecase/status"
	"github.com/valyala/fasthttp"
)

type itemInput struct {
	ID     int    `path:"id" json:"-"`
	Name   string `json:"name"`
	Strict bool   `query:"strict"`
}

type namedInput struct {
	Name string `json:"name" required:"true" minLength:"1" maxLength:"8"`
}

type itemOutput struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func itemUseCase(fn func(in *itemInput, out *itemOutput) error) usecase.Interactor {
	u := struct {
		usecase.Interactor
		usecase.Info
		usecase.WithInput
		usecase.WithOutput
	}{}

	u.SetTitle("Update Item")
	u.Input = new(itemInput)
	u.Output = new(itemOutput)
	u.Interactor = usecase.Interact(func(ctx context.Context, input, output interface{}) error {
		return fn(input.(*itemInput), output.(*itemOutput))
	})

	return u
}

func echo(in *itemInput, out *itemOutput) error {
	out.ID = in.ID
	out.Name = in.Name

	return nil
}

func do(h shell.Handler, method, uri, body string, headers ...string) *fasthttp.RequestCtx {
	rc := &fasthttp.RequestCtx{}
	rc.Request.Header.SetMethod(method)
	rc.Request.SetRequestURI(uri)

	if body != "" {
		rc.Request.Header.SetContentType("application/json")
		rc.Request.SetBodyString(body)
	}

	for i := 0; i+1 < len(headers); i += 2 {
		rc.Request.Header.Set(headers[i], headers[i+1])
	}

	shell.RequestHandler(h)(rc)

	return rc
}

func TestHandler_ServeHTTP(t *testing.T) {
	r := shell.NewRouter()
	r.Post("/items/{id}", rest.NewHandler(itemUseCase(echo)))

	rc := do(r, fasthttp.MethodPost, "/items/12", `{"name":"pencil","id":99}`)
	assert.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())
	assert.Equal(t, "application/json; charset=utf-8", string(rc.Response.Header.ContentType()))
	assert.JSONEq(t, `{"id":12,"name":"pencil"}`, string(rc.Response.Body()))
}

// errBody is the rendered rest.ErrResponse.
type errBody struct {
	Status  string                 `json:"status"`
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context"`
}

func decodeErr(t *testing.T, rc *fasthttp.RequestCtx) errBody {
	t.Helper()

	var b errBody

	require.NoError(t, json.Unmarshal(rc.Response.Body(), &b), string(rc.Response.Body()))

	return b
}

func TestHandler_ServeHTTP_decodingFailed(t *testing.T) {
	r := shell.NewRouter()
	r.Post("/items/{id}", rest.NewHandler(itemUseCase(echo)))

	rc := do(r, fasthttp.MethodPost, "/items/abc", `{"name":"pencil"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, rc.Response.StatusCode())

	b := decodeErr(t, rc)
	assert.Equal(t, "INVALID_ARGUMENT", b.Status)
	assert.Contains(t, b.Context, "path:id")

	rc = do(r, fasthttp.MethodPost, "/items/1", `{"name":`)
	assert.Equal(t, fasthttp.StatusBadRequest, rc.Response.StatusCode())
	assert.Contains(t, decodeErr(t, rc).Error, "failed to decode json")

	rc = do(r, fasthttp.MethodPost, "/items/1", ``)
	assert.Equal(t, fasthttp.StatusBadRequest, rc.Response.StatusCode())
	assert.Contains(t, decodeErr(t, rc).Error, "missing request body")

	rc = do(r, fasthttp.MethodPost, "/items/1?strict=maybe", `{"name":"x"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, rc.Response.StatusCode())
	assert.Contains(t, decodeErr(t, rc).Context, "query:strict")
}

func TestHandler_ServeHTTP_validation(t *testing.T) {
	var called int

	u := usecase.NewIOI(new(namedInput), new(itemOutput), func(ctx context.Context, input, output interface{}) error {
		called++
		output.(*itemOutput).Name = input.(*namedInput).Name

		return nil
	})

	apiSchema := &openapi.Collector{}
	validators := jsonschema.NewFactory(apiSchema, apiSchema)

	r := shell.NewRouter()
	r.Post("/named", rest.NewHandler(u, rest.WithRequestValidator(fasthttp.MethodPost, validators)))

	rc := do(r, fasthttp.MethodPost, "/named", `{"name":"pencil"}`)
	assert.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())
	assert.JSONEq(t, `{"id":0,"name":"pencil"}`, string(rc.Response.Body()))

	for _, body := range []string{`{"name":""}`, `{}`, `{"name":"sharpener"}`} {
		rc = do(r, fasthttp.MethodPost, "/named", body)
		assert.Equal(t, fasthttp.StatusBadRequest, rc.Response.StatusCode(), body)
		assert.Equal(t, "INVALID_ARGUMENT", decodeErr(t, rc).Status, body)
	}

	assert.Equal(t, 1, called)
}

func TestHandler_ServeHTTP_useCaseError(t *testing.T) {
	r := shell.NewRouter()
	r.Post("/items/{id}", rest.NewHandler(itemUseCase(func(in *itemInput, out *itemOutput) error {
		switch in.ID {
		case 1:
			return usecase.Error{
				StatusCode: status.NotFound,
				Value:      errors.New("item 1 is gone"),
				Context:    map[string]interface{}{"id": in.ID},
			}
		case 2:
			return status.AlreadyExists
		default:
			return errors.New("disk is on fire")
		}
	})))

	rc := do(r, fasthttp.MethodPost, "/items/1", `{}`)
	assert.Equal(t, fasthttp.StatusNotFound, rc.Response.StatusCode())

	b := decodeErr(t, rc)
	assert.Equal(t, "NOT_FOUND", b.Status)
	assert.Contains(t, b.Error, "item 1 is gone")
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, b.Context)

	rc = do(r, fasthttp.MethodPost, "/items/2", `{}`)
	assert.Equal(t, fasthttp.StatusConflict, rc.Response.StatusCode())
	assert.Contains(t, string(rc.Response.Body()), `"status":"ALREADY_EXISTS"`)

	rc = do(r, fasthttp.MethodPost, "/items/3", `{}`)
	assert.Equal(t, fasthttp.StatusInternalServerError, rc.Response.StatusCode())
	assert.Equal(t, "disk is on fire", decodeErr(t, rc).Error)
}

func TestHandler_ServeHTTP_noOutput(t *testing.T) {
	var called bool

	u := usecase.NewIOI(nil, nil, func(ctx context.Context, input, output interface{}) error {
		called = true

		return nil
	})

	r := shell.NewRouter()
	r.Delete("/items", rest.NewHandler(u))

	rc := do(r, fasthttp.MethodDelete, "/items", "")
	assert.True(t, called)
	assert.Equal(t, fasthttp.StatusNoContent, rc.Response.StatusCode())
	assert.Empty(t, rc.Response.Body())
}

func TestHandler_successfulResponseCode(t *testing.T) {
	r := shell.NewRouter()
	r.Post("/items/{id}", rest.NewHandler(itemUseCase(echo), rest.WithSuccessfulResponseCode(fasthttp.StatusCreated)))

	rc := do(r, fasthttp.MethodPost, "/items/1", `{"name":"x"}`)
	assert.Equal(t, fasthttp.StatusCreated, rc.Response.StatusCode())
}

func TestUseCaseMiddlewares(t *testing.T) {
	var errs []error

	mw := usecase.MiddlewareFunc(func(next usecase.Interactor) usecase.Interactor {
		return usecase.Interact(func(ctx context.Context, input, output interface{}) error {
			err := next.Interact(ctx, input, output)
			if err != nil {
				errs = append(errs, err)
			}

			return err
		})
	})

	r := shell.NewRouter()
	r.With(rest.UseCaseMiddlewares(mw)).Post("/items/{id}", rest.NewHandler(itemUseCase(func(in *itemInput, out *itemOutput) error {
		if in.Name == "" {
			return status.FailedPrecondition
		}

		return echo(in, out)
	})))

	rc := do(r, fasthttp.MethodPost, "/items/1", `{"name":"a"}`)
	assert.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())
	assert.Empty(t, errs)

	rc = do(r, fasthttp.MethodPost, "/items/1", `{"name":""}`)
	assert.Equal(t, fasthttp.StatusBadRequest, rc.Response.StatusCode())
	assert.Contains(t, string(rc.Response.Body()), "FAILED_PRECONDITION")

	rc = do(r, fasthttp.MethodPost, "/items/x", `{"name":"a"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, rc.Response.StatusCode())

	require.Len(t, errs, 2)
	assert.True(t, errors.Is(errs[0], status.FailedPrecondition))

	var ue usecase.Error
	require.True(t, errors.As(errs[1], &ue))
	assert.Equal(t, status.InvalidArgument, ue.StatusCode)
}

func TestHandlerAs(t *testing.T) {
	h := rest.NewHandler(itemUseCase(echo))

	var found *rest.Handler

	assert.True(t, rest.HandlerAs(h, &found))
	assert.Same(t, h, found)

	found = nil
	mw := func(next shell.Handler) shell.Handler { return next }

	assert.True(t, rest.HandlerAs(shell.Chain(mw, mw).Handler(h), &found))
	assert.Same(t, h, found)
	assert.False(t, rest.HandlerAs(shell.HandlerFunc(func(context.Context, *fasthttp.RequestCtx) {}), &found))
}

func TestWriteJSON_compression(t *testing.T) {
	long := strings.Repeat("accessible ", 100)

	r := shell.NewRouter()
	r.Post("/items/{id}", rest.NewHandler(itemUseCase(echo)))

	body := `{"name":"` + long + `"}`
	want := `{"id":1,"name":"` + long + `"}`

	rc := do(r, fasthttp.MethodPost, "/items/1", body, "Accept-Encoding", "gzip, deflate, br")
	require.Equal(t, "br", string(rc.Response.Header.Peek("Content-Encoding")))

	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(rc.Response.Body())))
	require.NoError(t, err)
	assert.JSONEq(t, want, string(plain))

	rc = do(r, fasthttp.MethodPost, "/items/1", body, "Accept-Encoding", "gzip, br;q=0")
	require.Equal(t, "gzip", string(rc.Response.Header.Peek("Content-Encoding")))

	zr, err := gzip.NewReader(bytes.NewReader(rc.Response.Body()))
	require.NoError(t, err)

	plain, err = io.ReadAll(zr)
	require.NoError(t, err)
	assert.JSONEq(t, want, string(plain))

	rc = do(r, fasthttp.MethodPost, "/items/1", body, "Accept-Encoding", "identity")
	assert.Empty(t, rc.Response.Header.Peek("Content-Encoding"))
	assert.JSONEq(t, want, string(rc.Response.Body()))

	rc = do(r, fasthttp.MethodPost, "/items/1", `{"name":"short"}`, "Accept-Encoding", "br")
	assert.Empty(t, rc.Response.Header.Peek("Content-Encoding"))
}

func TestErr(t *testing.T) {
	er, code := rest.Err(context.DeadlineExceeded)
	assert.Equal(t, fasthttp.StatusGatewayTimeout, code)
	assert.Equal(t, "DEADLINE_EXCEEDED", er.StatusText)

	er, code = rest.Err(usecase.Error{StatusCode: status.InvalidArgument, Value: errors.New("bad title")})
	assert.Equal(t, fasthttp.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ARGUMENT", er.StatusText)
	assert.Contains(t, er.ErrorText, "bad title")

	assert.Panics(t, func() { rest.Err(nil) })
}
