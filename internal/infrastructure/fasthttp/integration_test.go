package fasthttp_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/neurolearn/shell"
	"github.com/neurolearn/shell/internal/config"
	"github.com/neurolearn/shell/internal/infrastructure"
	http3 "github.com/neurolearn/shell/internal/infrastructure/fasthttp"
	"github.com/neurolearn/shell/store"
	"github.com/neurolearn/shell/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type app struct {
	url   string
	store *store.Store
	logs  *observer.ObservedLogs
}

func newApp(t *testing.T, cfg config.HTTP) app {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)

	l, err := infrastructure.NewServiceLocator(config.Storage{Driver: config.DriverMemory}, zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, l.Close()) })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	url := "http://" + ln.Addr().String()
	st := store.New(url)

	r := http3.NewRouter(l, cfg, view.DefaultTable(st), prometheus.NewRegistry())

	srv := &fasthttp.Server{Handler: shell.RequestHandler(r)}

	go func() {
		_ = srv.Serve(ln)
	}()

	t.Cleanup(func() { assert.NoError(t, srv.Shutdown()) })

	return app{url: url, store: st, logs: logs}
}

func get(t *testing.T, url string, headers ...string) (int, string) {
	t.Helper()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	require.NoError(t, fasthttp.Do(req, resp))

	return resp.StatusCode(), string(resp.Body())
}

func Test_resourceLifeSpan(t *testing.T) {
	a := newApp(t, config.Default().HTTP)
	ctx := context.Background()

	code, body := get(t, a.url+"/api/health")
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.JSONEq(t, `{"status":"online","message":"Welcome to NeuroLearn API"}`, body)

	a.store.FetchResources(ctx)
	st := a.store.State()
	assert.Nil(t, st.Error)
	assert.Empty(t, st.Resources)

	created, err := a.store.CreateResource(ctx, store.Resource{
		"id":                  float64(77),
		"title":               "Reading rulers",
		"content":             "Use a coloured overlay.",
		"resource_type":       "guide",
		"difficulty_level":    float64(1),
		"has_simplified_text": true,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "Reading rulers", created["title"])
	assert.Equal(t, true, created["has_simplified_text"])

	_, err = a.store.CreateResource(ctx, store.Resource{
		"title":         "Counting beads",
		"content":       strings.Repeat("Move one bead at a time. ", 40),
		"resource_type": "exercise",
	})
	require.NoError(t, err)

	a.store.FetchResources(ctx)
	st = a.store.State()
	require.Nil(t, st.Error)
	require.Len(t, st.Resources, 2)
	assert.Equal(t, "Reading rulers", st.Resources[0]["title"])
	assert.Equal(t, "Counting beads", st.Resources[1]["title"])
	assert.False(t, st.Loading)

	code, body = get(t, a.url+"/api/resources/2")
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.Contains(t, body, `"title":"Counting beads"`)

	assert.NotContains(t, body, "created_at")

	code, body = get(t, a.url+"/api/resources/99")
	assert.Equal(t, fasthttp.StatusNotFound, code)

	er := errResponse(t, body)
	assert.Equal(t, "NOT_FOUND", er.Status)
	assert.Contains(t, er.Error, "resource not found")
	assert.Equal(t, map[string]interface{}{"id": float64(99)}, er.Context)

	code, body = get(t, a.url+"/")
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.Contains(t, body, "Reading rulers")
	assert.Contains(t, body, "Counting beads")

	code, _ = get(t, a.url+"/dyscalculia")
	assert.Equal(t, fasthttp.StatusOK, code)

	code, _ = get(t, a.url+"/unknown")
	assert.Equal(t, fasthttp.StatusNotFound, code)

	code, body = get(t, a.url+"/metrics")
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.Contains(t, body, "neurolearn_http_requests_total")
}

type errBody struct {
	Status  string                 `json:"status"`
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context"`
}

func errResponse(t *testing.T, body string) errBody {
	t.Helper()

	var er errBody

	require.NoError(t, json.Unmarshal([]byte(body), &er), body)

	return er
}

func post(t *testing.T, url, body string) (int, string) {
	t.Helper()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBodyString(body)

	require.NoError(t, fasthttp.Do(req, resp))

	return resp.StatusCode(), string(resp.Body())
}

func Test_createValidation(t *testing.T) {
	a := newApp(t, config.Default().HTTP)

	for name, body := range map[string]string{
		"long title":    `{"title":"` + strings.Repeat("t", 256) + `","content":"c","resource_type":"guide"}`,
		"long type":     `{"title":"t","content":"c","resource_type":"` + strings.Repeat("g", 51) + `"}`,
		"empty content": `{"title":"t","content":"","resource_type":"guide"}`,
		"missing title": `{"content":"c","resource_type":"guide"}`,
	} {
		code, resp := post(t, a.url+"/api/resources/", body)
		assert.Equal(t, fasthttp.StatusBadRequest, code, name)
		assert.Equal(t, "INVALID_ARGUMENT", errResponse(t, resp).Status, name)
	}

	code, resp := post(t, a.url+"/api/resources/",
		`{"title":"`+strings.Repeat("ü", 255)+`","content":"c","resource_type":"guide"}`)
	assert.Equal(t, fasthttp.StatusOK, code, resp)
	assert.NotContains(t, resp, "created_at")

	code, resp = get(t, a.url+"/api/resources/")
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.NotContains(t, resp, "created_at")
}

func Test_docs(t *testing.T) {
	a := newApp(t, config.Default().HTTP)

	code, body := get(t, a.url+"/api/docs/openapi.json")
	require.Equal(t, fasthttp.StatusOK, code)

	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]map[string]interface{} `json:"paths"`
	}

	require.NoError(t, json.Unmarshal([]byte(body), &doc), body)
	assert.Equal(t, "NeuroLearn API", doc.Info.Title)
	assert.Equal(t, "0.1.0", doc.Info.Version)
	assert.Contains(t, doc.Paths, "/api/resources/{id}")
	require.Contains(t, doc.Paths, "/api/resources/")
	assert.Contains(t, doc.Paths["/api/resources/"], "post")
	assert.Contains(t, doc.Paths["/api/resources/"], "get")
	assert.Contains(t, body, `"maxLength":255`)

	code, body = get(t, a.url+"/api/docs/")
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.Contains(t, body, "openapi.json")
}

func Test_createInvalid(t *testing.T) {
	a := newApp(t, config.Default().HTTP)
	ctx := context.Background()

	_, err := a.store.CreateResource(ctx, store.Resource{"title": "No content"})
	require.Error(t, err)

	var se *store.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, fasthttp.StatusBadRequest, se.StatusCode)

	st := a.store.State()
	require.NotNil(t, st.Error)
	assert.Equal(t, store.CreateFailureMessage, *st.Error)
	assert.Empty(t, st.Resources)

	assert.NotZero(t, a.logs.FilterMessage("use case failed").Len())
}

func Test_cors(t *testing.T) {
	a := newApp(t, config.Default().HTTP)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(a.url + "/api/resources/")
	req.Header.SetMethod(fasthttp.MethodOptions)
	req.Header.Set(fasthttp.HeaderOrigin, "http://localhost:8080")
	req.Header.Set(fasthttp.HeaderAccessControlRequestMethod, fasthttp.MethodPost)

	require.NoError(t, fasthttp.Do(req, resp))
	assert.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.Equal(t, "http://localhost:8080", string(resp.Header.Peek(fasthttp.HeaderAccessControlAllowOrigin)))
	assert.Equal(t, fasthttp.MethodPost, string(resp.Header.Peek(fasthttp.HeaderAccessControlAllowMethods)))
}

func Test_debug(t *testing.T) {
	a := newApp(t, config.Default().HTTP)

	code, _ := get(t, a.url+"/debug/vars")
	assert.Equal(t, fasthttp.StatusNotFound, code)

	cfg := config.Default().HTTP
	cfg.Debug = true
	cfg.DebugUser = "admin"
	cfg.DebugPassword = "secret"

	a = newApp(t, cfg)

	code, _ = get(t, a.url+"/debug/vars")
	assert.Equal(t, fasthttp.StatusUnauthorized, code)

	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	code, body := get(t, a.url+"/debug/vars", fasthttp.HeaderAuthorization, auth)
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.Contains(t, body, "memstats")
}
