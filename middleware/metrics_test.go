package middleware_test

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/response"
	"github.com/dmitrymomot/waypoint/core/router"
	"github.com/dmitrymomot/waypoint/middleware"
)

func labels(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func requestCounts(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	out := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "app_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			l := labels(m)
			out[l["method"]+" "+l["route"]+" "+l["status"]] = m.GetCounter().GetValue()
		}
	}
	return out
}

func TestMetricsLabelsByRoutePattern(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := newRouter(middleware.Metrics[*router.Context](middleware.MetricsConfig{
		Namespace: "app",
		Registry:  reg,
	}))
	r.Get("/users/:id", ok("user"))
	r.Get("/fail", func(ctx *router.Context) handler.Response {
		return response.Error(response.ErrConflict)
	})

	serve(r, get("/users/1"))
	serve(r, get("/users/2"))
	serve(r, get("/fail"))
	serve(r, get("/unknown"))

	assert.Equal(t, map[string]float64{
		"GET /users/:id 200": 2,
		"GET /fail 409":      1,
	}, requestCounts(t, reg))

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "app_http_request_duration_seconds"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "app_http_response_size_bytes"))
}

func TestMetricsInFlightReturnsToZero(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	var during float64
	r := newRouter(middleware.Metrics[*router.Context](middleware.MetricsConfig{Registry: reg}))
	r.Get("/slow", func(ctx *router.Context) handler.Response {
		return func(w http.ResponseWriter, req *http.Request) error {
			families, _ := reg.Gather()
			for _, mf := range families {
				if mf.GetName() == "http_requests_in_flight" {
					during = mf.GetMetric()[0].GetGauge().GetValue()
				}
			}
			w.WriteHeader(http.StatusOK)
			return nil
		}
	})
	r.Get("/panic", func(ctx *router.Context) handler.Response {
		panic("boom")
	})

	serve(r, get("/slow"))
	serve(r, get("/panic"))

	assert.Equal(t, float64(1), during)
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "http_requests_in_flight" {
			for _, m := range mf.GetMetric() {
				assert.Zero(t, m.GetGauge().GetValue(), labels(m)["route"])
			}
		}
	}
}

func TestMetricsSharedRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	cfg := middleware.MetricsConfig{Registry: reg}

	api := newRouter(middleware.Metrics[*router.Context](cfg))
	api.Get("/a", ok("a"))
	admin := newRouter(middleware.Metrics[*router.Context](cfg))
	admin.Get("/b", ok("b"))

	serve(api, get("/a"))
	serve(admin, get("/b"))

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "http_requests_total"))
}
