package simple

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/waypoint/core/config"
	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/health"
	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/response"
	"github.com/dmitrymomot/waypoint/core/router"
	"github.com/dmitrymomot/waypoint/core/server"
	"github.com/dmitrymomot/waypoint/integration/database/redis"
	"github.com/dmitrymomot/waypoint/middleware"
	"github.com/dmitrymomot/waypoint/pkg/ratelimiter"
)

// Built-in routes registered by NewApp.
const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
	MetricsPath   = "/metrics"
)

// App wires configuration, logging, routing and the HTTP server together.
type App struct {
	config    Config
	hasConfig bool

	logger   *slog.Logger
	router   router.Router[*Context]
	server   *server.Server
	registry *prometheus.Registry
	tracer   trace.TracerProvider

	redis     goredis.UniversalClient
	ownsRedis bool
	memStore  *ratelimiter.MemoryStore
	checks    []func(context.Context) error
	extra     []handler.Middleware[*Context]
}

type AppOption func(*App) error

// NewApp loads the configuration unless WithConfig is given, connects to
// Redis when enabled, and builds the router with the standard middleware
// stack and the health and metrics routes. Register application routes on
// Router before calling Run.
//
// The built-in routes seal the router's middleware list, so Router().Use
// panics with router.ErrLateMiddleware. Pass app-wide middleware with
// WithMiddleware, or scope it with Router().With and Router().Group.
func NewApp(ctx context.Context, opts ...AppOption) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if !app.hasConfig {
		if err := config.Load(&app.config); err != nil {
			return nil, err
		}
	}
	cfg := app.config

	if app.logger == nil {
		app.logger = logger.New(
			logger.WithConfig(cfg.Log),
			logger.WithAttr(slog.String("service", cfg.AppName), slog.String("env", cfg.Env)),
			logger.WithContextExtractors(middleware.RequestIDExtractor),
		)
	}

	if app.registry == nil && cfg.MetricsEnabled {
		app.registry = prometheus.NewRegistry()
		app.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if app.redis == nil && cfg.RedisEnabled {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		app.redis = client
		app.ownsRedis = true
	}
	if app.redis != nil {
		app.checks = append(app.checks, redis.Healthcheck(app.redis))
	}

	limiter, err := app.newLimiter()
	if err != nil {
		return nil, errors.Join(err, app.close())
	}

	if app.server == nil {
		s, err := server.NewFromConfig(cfg.Server, server.WithLogger(app.logger))
		if err != nil {
			return nil, errors.Join(err, app.close())
		}
		app.server = s
	}

	app.router = router.New[*Context](
		router.WithContextFactory(app.newContext),
		router.WithLogger[*Context](app.logger),
		router.WithErrorHandler(response.JSONErrorHandler[*Context]),
	)
	app.router.Use(app.middlewares(limiter)...)
	app.router.Use(app.extra...)
	app.registerBuiltins()

	return app, nil
}

func (a *App) newContext(w http.ResponseWriter, r *http.Request, params map[string]string) *Context {
	return &Context{w: w, r: r, params: params, log: a.logger}
}

func (a *App) newLimiter() (ratelimiter.RateLimiter, error) {
	if !a.config.RateLimitEnabled {
		return nil, nil
	}

	var store ratelimiter.Store
	if a.redis != nil {
		store = ratelimiter.NewRedisStore(a.redis)
	} else {
		a.memStore = ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreLogger(a.logger))
		a.checks = append(a.checks, a.memStore.Healthcheck)
		store = a.memStore
	}

	bucket, err := ratelimiter.NewBucket(store, a.config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return bucket, nil
}

func (a *App) middlewares(limiter ratelimiter.RateLimiter) []handler.Middleware[*Context] {
	mws := []handler.Middleware[*Context]{
		middleware.RequestID[*Context](),
		middleware.ClientIP[*Context](),
		middleware.LoggingWithConfig[*Context](middleware.LoggingConfig{
			Skip:      isProbe,
			Logger:    a.logger,
			Component: "http",
		}),
		middleware.Tracing[*Context](middleware.TracingConfig{
			Skip:           isProbe,
			TracerProvider: a.tracer,
		}),
	}
	if a.registry != nil {
		mws = append(mws, middleware.Metrics[*Context](middleware.MetricsConfig{
			Skip:      isMetrics,
			Namespace: metricsNamespace(a.config.AppName),
			Registry:  a.registry,
		}))
	}
	if limiter != nil {
		mws = append(mws, middleware.RateLimit[*Context](middleware.RateLimitConfig{
			Skip:       isProbe,
			Limiter:    limiter,
			SetHeaders: true,
		}))
	}
	return mws
}

func (a *App) registerBuiltins() {
	a.router.Get(LivenessPath, health.Liveness[*Context])
	a.router.Get(ReadinessPath, health.Readiness[*Context](a.logger, a.checks...))

	if a.registry != nil {
		metrics := promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
		a.router.Get(MetricsPath, func(*Context) handler.Response {
			return response.Handler(metrics)
		})
	}
}

func isProbe(ctx handler.Context) bool {
	switch router.RoutePattern(ctx) {
	case LivenessPath, ReadinessPath, MetricsPath:
		return true
	}
	return false
}

func isMetrics(ctx handler.Context) bool {
	return router.RoutePattern(ctx) == MetricsPath
}

// metricsNamespace turns an application name into a valid metric prefix.
func metricsNamespace(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}

// Router returns the application router for route registration.
func (a *App) Router() router.Router[*Context] { return a.router }

// Handler returns the application as an http.Handler.
func (a *App) Handler() http.Handler { return a.router }

func (a *App) Logger() *slog.Logger { return a.logger }

func (a *App) Config() Config { return a.config }

// Addr returns the address the server listens on while running.
func (a *App) Addr() string { return a.server.Addr() }

// Run serves HTTP and runs the rate limiter cleanup until ctx is cancelled
// or one of them fails. A Redis client opened by NewApp is closed on return.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run(gctx, a.router))
	if a.memStore != nil {
		g.Go(a.memStore.Run(gctx))
	}

	err := g.Wait()
	return errors.Join(err, a.close())
}

func (a *App) close() error {
	if a.ownsRedis && a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// WithConfig skips environment loading.
func WithConfig(cfg Config) AppOption {
	return func(app *App) error {
		app.config = cfg
		app.hasConfig = true
		return nil
	}
}

func WithLogger(log *slog.Logger) AppOption {
	return func(app *App) error {
		if log == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = log
		return nil
	}
}

func WithServer(s *server.Server) AppOption {
	return func(app *App) error {
		if s == nil {
			return errors.New("server cannot be nil")
		}
		app.server = s
		return nil
	}
}

// WithRedisClient uses client for rate limiting and readiness. The caller
// keeps ownership and closes it.
func WithRedisClient(client goredis.UniversalClient) AppOption {
	return func(app *App) error {
		if client == nil {
			return errors.New("redis client cannot be nil")
		}
		app.redis = client
		return nil
	}
}

// WithRegistry exposes metrics from reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) AppOption {
	return func(app *App) error {
		if reg == nil {
			return errors.New("metrics registry cannot be nil")
		}
		app.registry = reg
		return nil
	}
}

func WithTracerProvider(tp trace.TracerProvider) AppOption {
	return func(app *App) error {
		if tp == nil {
			return errors.New("tracer provider cannot be nil")
		}
		app.tracer = tp
		return nil
	}
}

// WithMiddleware appends middleware to the router after the standard stack.
// It also wraps the health and metrics routes.
func WithMiddleware(mws ...handler.Middleware[*Context]) AppOption {
	return func(app *App) error {
		for _, mw := range mws {
			if mw == nil {
				return errors.New("middleware cannot be nil")
			}
		}
		app.extra = append(app.extra, mws...)
		return nil
	}
}

// WithReadinessCheck adds a dependency check to the readiness probe.
func WithReadinessCheck(check func(context.Context) error) AppOption {
	return func(app *App) error {
		if check == nil {
			return errors.New("readiness check cannot be nil")
		}
		app.checks = append(app.checks, check)
		return nil
	}
}
