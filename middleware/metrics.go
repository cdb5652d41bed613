package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/neurolearn/shell"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/valyala/fasthttp"
)

// Metrics collects request counters and latency histograms labelled by
// method, route pattern and status.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers request metrics in reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neurolearn",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "neurolearn",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
	}
}

// Middleware observes requests, mount it on the root router so that the
// route pattern is resolved by the time the handler returns.
func (m *Metrics) Middleware(next shell.Handler) shell.Handler {
	return shell.HandlerFunc(func(ctx context.Context, rc *fasthttp.RequestCtx) {
		start := time.Now()

		next.ServeHTTP(ctx, rc)

		route := "unmatched"
		if rctx := shell.RouteContext(rc); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		method := string(rc.Method())

		m.requests.WithLabelValues(method, route, strconv.Itoa(rc.Response.StatusCode())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}
