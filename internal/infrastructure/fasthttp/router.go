// Package fasthttp serves the NeuroLearn API and web shell.
package fasthttp

import (
	"context"
	"net/http"

	"github.com/neurolearn/shell"
	"github.com/neurolearn/shell/internal/config"
	"github.com/neurolearn/shell/internal/infrastructure/schema"
	"github.com/neurolearn/shell/internal/infrastructure/service"
	"github.com/neurolearn/shell/internal/usecase"
	"github.com/neurolearn/shell/middleware"
	"github.com/neurolearn/shell/rest"
	"github.com/neurolearn/shell/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/rest/jsonschema"
	"github.com/swaggest/rest/openapi"
	"github.com/swaggest/swgui/v3cdn"
	usecase2 "github.com/swaggest/usecase"
	fasthttp2 "github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Health is the body of the health endpoint.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewRouter creates the application router.
//
// The resource API lives under /api, views of the table are served from
// the root. Registry receives request metrics and is exposed at /metrics.
func NewRouter(locator *service.Locator, cfg config.HTTP, table view.Table, registry *prometheus.Registry) *shell.Mux {
	logger := locator.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics := middleware.NewMetrics(registry)
	logErrors := rest.UseCaseMiddlewares(logUseCaseErrors(logger))

	apiSchema := schema.NewOpenAPICollector()
	endpoints := endpoints{
		schema:     apiSchema,
		validators: jsonschema.NewFactory(apiSchema, apiSchema),
		prefix:     "/api",
	}

	r := shell.NewRouter()

	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer(logger),
		middleware.Logger(logger),
		metrics.Middleware,
		middleware.CORS,
	)

	r.Route("/api", func(r shell.Router) {
		r.Use(middleware.NoCache)

		if cfg.MaxInFlight > 0 {
			r.Use(middleware.ThrottleBacklog(cfg.MaxInFlight, cfg.BacklogLimit, cfg.BacklogTimeout.Duration))
		}

		if cfg.RequestTimeout.Duration > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout.Duration))
		}

		r.Get("/health", shell.HandlerFunc(func(_ context.Context, rc *fasthttp2.RequestCtx) {
			rest.WriteJSON(rc, fasthttp2.StatusOK, Health{Status: "online", Message: "Welcome to NeuroLearn API"})
		}))

		endpoints.method(r.With(logErrors), http.MethodGet, "/resources/", usecase.FindResources(locator))
		endpoints.method(r.With(logErrors), http.MethodGet, "/resources/{id}", usecase.FindResource(locator))
		endpoints.method(r.With(middleware.AllowContentType("application/json"), logErrors),
			http.MethodPost, "/resources/", usecase.CreateResource(locator))

		r.Method(http.MethodGet, "/docs/openapi.json", shell.Adapt(apiSchema))
		r.Mount("/docs", shell.Adapt(v3cdn.NewHandler(schema.Title, "/api/docs/openapi.json", "/api/docs")))
	})

	r.Get("/metrics", shell.Adapt(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if cfg.Debug {
		debug := r.With()
		if cfg.DebugUser != "" {
			debug = r.With(middleware.BasicAuth("NeuroLearn Debug", map[string]string{cfg.DebugUser: cfg.DebugPassword}))
		}

		debug.Mount("/debug", middleware.Profiler())
	}

	view.Mount(r, table)

	return r
}

// endpoints registers use case handlers with request validation and
// documents them in the OpenAPI schema.
type endpoints struct {
	schema     *openapi.Collector
	validators rest.RequestValidatorFactory
	prefix     string
}

func (e endpoints) method(r shell.Router, method, pattern string, u usecase2.Interactor, options ...func(h *rest.Handler)) {
	options = append(options, rest.WithRequestValidator(method, e.validators))
	h := rest.NewHandler(u, options...)

	if err := e.schema.Collect(method, e.prefix+pattern, u, h.HandlerTrait); err != nil {
		panic(err)
	}

	r.Method(method, pattern, h)
}

// logUseCaseErrors logs failed interactions with use case title.
func logUseCaseErrors(logger *zap.Logger) usecase2.Middleware {
	return usecase2.MiddlewareFunc(func(next usecase2.Interactor) usecase2.Interactor {
		title := "decoding"

		var withTitle usecase2.HasTitle
		if usecase2.As(next, &withTitle) && withTitle.Title() != "" {
			title = withTitle.Title()
		}

		return usecase2.Interact(func(ctx context.Context, input, output interface{}) error {
			err := next.Interact(ctx, input, output)
			if err != nil {
				logger.Warn("use case failed",
					zap.String("use_case", title),
					zap.String("request_id", middleware.GetRequestID(ctx)),
					zap.Error(err),
				)
			}

			return err
		})
	})
}
