package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/router"
)

type MetricsConfig struct {
	Skip        func(ctx handler.Context) bool
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
	// Buckets for the duration histogram. Default prometheus.DefBuckets.
	Buckets []float64
	// Registry defaults to prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
	size     *prometheus.HistogramVec
}

func newHTTPMetrics(cfg MetricsConfig) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by route and status.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"method", "route", "status"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency in seconds.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"method", "route"}),

		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "http_requests_in_flight",
			Help:        "HTTP requests currently being served.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"route"}),

		size: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "http_response_size_bytes",
			Help:        "HTTP response body size in bytes.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(128, 4, 8),
		}, []string{"method", "route"}),
	}

	m.requests = register(cfg.Registry, m.requests)
	m.duration = register(cfg.Registry, m.duration)
	m.inFlight = register(cfg.Registry, m.inFlight)
	m.size = register(cfg.Registry, m.size)
	return m
}

// register returns the already registered collector when an identical one
// exists, so several routers can share a registry.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic("metrics middleware: " + err.Error())
	}
	return c
}

// Metrics records Prometheus request metrics labelled by the matched route
// pattern rather than the raw path.
func Metrics[C handler.Context](cfg MetricsConfig) handler.Middleware[C] {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = prometheus.DefBuckets
	}
	m := newHTTPMetrics(cfg)

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			start := time.Now()
			route := router.RoutePattern(ctx)
			gauge := m.inFlight.WithLabelValues(route)
			gauge.Inc()

			resp := func() handler.Response {
				defer func() {
					if p := recover(); p != nil {
						gauge.Dec()
						panic(p)
					}
				}()
				return next(ctx)
			}()
			if resp == nil {
				gauge.Dec()
				return nil
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				defer gauge.Dec()

				tw := track(w)
				err := resp(tw, r)

				status := strconv.Itoa(statusOf(tw, err))
				m.requests.WithLabelValues(r.Method, route, status).Inc()
				m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
				m.size.WithLabelValues(r.Method, route).Observe(float64(tw.Size()))
				return err
			}
		}
	}
}
