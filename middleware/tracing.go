package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/router"
)

const tracerName = "github.com/dmitrymomot/waypoint/middleware"

type TracingConfig struct {
	Skip func(ctx handler.Context) bool
	// TracerProvider defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
	// Propagator defaults to otel.GetTextMapPropagator().
	Propagator propagation.TextMapPropagator
	// SpanName defaults to "<METHOD> <route pattern>".
	SpanName func(method, route string) string
	// Attributes adds per-request span attributes.
	Attributes func(ctx handler.Context) []attribute.KeyValue
}

// Tracing starts a server span per matched request, continuing any trace
// carried in the request headers. The span is installed in the request
// context when the handler context implements handler.ContextReplacer.
func Tracing[C handler.Context](cfg TracingConfig) handler.Middleware[C] {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.Propagator == nil {
		cfg.Propagator = otel.GetTextMapPropagator()
	}
	if cfg.SpanName == nil {
		cfg.SpanName = func(method, route string) string {
			return method + " " + route
		}
	}
	tracer := cfg.TracerProvider.Tracer(tracerName)

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()
			route := router.RoutePattern(req.Context())
			parent := cfg.Propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))

			attrs := []attribute.KeyValue{
				attribute.String("http.request.method", req.Method),
				attribute.String("http.route", route),
				attribute.String("url.path", req.URL.Path),
			}
			if ua := req.UserAgent(); ua != "" {
				attrs = append(attrs, attribute.String("user_agent.original", ua))
			}
			if cfg.Attributes != nil {
				attrs = append(attrs, cfg.Attributes(ctx)...)
			}

			spanCtx, span := tracer.Start(parent, cfg.SpanName(req.Method, route),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			if cr, ok := any(ctx).(handler.ContextReplacer); ok {
				cr.ReplaceContext(spanCtx)
			}

			resp := func() handler.Response {
				defer func() {
					if p := recover(); p != nil {
						span.SetStatus(codes.Error, "panic")
						span.End()
						panic(p)
					}
				}()
				return next(ctx)
			}()
			if resp == nil {
				span.SetStatus(codes.Error, "nil response")
				span.End()
				return nil
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				defer span.End()

				tw := track(w)
				err := resp(tw, r)
				status := statusOf(tw, err)

				span.SetAttributes(attribute.Int("http.response.status_code", status))
				if err != nil {
					span.RecordError(err)
				}
				if status >= http.StatusInternalServerError {
					span.SetStatus(codes.Error, http.StatusText(status))
				}
				return err
			}
		}
	}
}
