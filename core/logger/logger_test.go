package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithAttr(slog.String("service", "api")),
	)

	log.Info("started", logger.Component("server"), logger.Error(nil))

	rec := decode(t, &buf)
	assert.Equal(t, "started", rec["msg"])
	assert.Equal(t, "api", rec["service"])
	assert.Equal(t, "server", rec["component"])
	assert.NotContains(t, rec, "error")
}

func TestNewLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewTextFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithDevelopment("api"))

	log.Debug("routing", logger.Route("/users/:id"))

	assert.Contains(t, buf.String(), "msg=routing")
	assert.Contains(t, buf.String(), "route=/users/:id")
	assert.Contains(t, buf.String(), "env=development")
}

func TestNewContextExtractors(t *testing.T) {
	t.Parallel()

	type key struct{}
	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithContextValue("request_id", key{}),
	).With(logger.Component("test"))

	ctx := context.WithValue(context.Background(), key{}, "req-1")
	log.InfoContext(ctx, "handled")

	rec := decode(t, &buf)
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "test", rec["component"])

	buf.Reset()
	log.InfoContext(context.Background(), "no id")
	assert.NotContains(t, decode(t, &buf), "request_id")
}

func TestWithConfig(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithConfig(logger.Config{Level: "debug", Format: "text"}))

	log.Debug("visible")

	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(in), in)
	}
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
	assert.True(t, logger.Route("").Equal(slog.Attr{}))
	assert.True(t, logger.Key("k", nil).Equal(slog.Attr{}))

	err := errors.New("boom")
	assert.Equal(t, "error", logger.Error(err).Key)
	assert.Equal(t, "route", logger.Route("/a").Key)
	assert.Equal(t, time.Second, logger.Duration(time.Second).Value.Duration())

	g := logger.Group("http", logger.Method("GET"), logger.StatusCode(200))
	assert.Len(t, g.Value.Group(), 2)
}
