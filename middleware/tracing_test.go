package middleware_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/response"
	"github.com/dmitrymomot/waypoint/core/router"
	"github.com/dmitrymomot/waypoint/middleware"
)

func tracedRouter(t *testing.T) (*tracetest.SpanRecorder, router.Router[*router.Context]) {
	t.Helper()

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	r := newRouter(middleware.Tracing[*router.Context](middleware.TracingConfig{
		TracerProvider: tp,
		Propagator:     propagation.TraceContext{},
	}))
	return rec, r
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingSpanNamedByRoute(t *testing.T) {
	t.Parallel()

	rec, r := tracedRouter(t)
	var inHandler trace.SpanContext
	r.Get("/users/:id", func(ctx *router.Context) handler.Response {
		inHandler = trace.SpanContextFromContext(ctx)
		return response.String("ok")
	})

	serve(r, get("/users/7"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /users/:id", span.Name())
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())

	attrs := spanAttrs(span)
	assert.Equal(t, "/users/:id", attrs["http.route"].AsString())
	assert.Equal(t, "/users/7", attrs["url.path"].AsString())
	assert.Equal(t, int64(http.StatusOK), attrs["http.response.status_code"].AsInt64())

	assert.True(t, inHandler.IsValid())
	assert.Equal(t, span.SpanContext().SpanID(), inHandler.SpanID())
}

func TestTracingContinuesIncomingTrace(t *testing.T) {
	t.Parallel()

	rec, r := tracedRouter(t)
	r.Get("/", ok("ok"))

	req := get("/")
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	serve(r, req)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent().SpanID().String())
}

func TestTracingMarksServerErrors(t *testing.T) {
	t.Parallel()

	rec, r := tracedRouter(t)
	r.Get("/boom", func(ctx *router.Context) handler.Response {
		return response.Error(response.ErrServiceUnavailable)
	})
	r.Get("/gone", func(ctx *router.Context) handler.Response {
		return response.Error(response.ErrNotFound)
	})

	serve(r, get("/boom"))
	serve(r, get("/gone"))

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
	assert.Equal(t, int64(http.StatusNotFound), spanAttrs(spans[1])["http.response.status_code"].AsInt64())
}

func TestTracingEndsSpanOnPanic(t *testing.T) {
	t.Parallel()

	rec, r := tracedRouter(t)
	r.Get("/panic", func(ctx *router.Context) handler.Response {
		panic("boom")
	})

	w := serve(r, get("/panic"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
