package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitterapi/pkg/tracing"
)

func newJSONLogger(t *testing.T, level LogLevel) (Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	var buf bytes.Buffer
	return New(level, &buf), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_WritesFieldsAndLevel(t *testing.T) {
	log, buf := newJSONLogger(t, InfoLevel)

	log.Info("user created", map[string]interface{}{"user_id": "u-1"})

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "user created", lines[0]["message"])
	assert.Equal(t, "u-1", lines[0]["user_id"])
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	log, buf := newJSONLogger(t, WarnLevel)

	log.Debug("hidden", nil)
	log.Info("hidden", nil)
	log.Warn("shown", nil)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
}

func TestLogger_WithFieldsDoesNotMutateParent(t *testing.T) {
	log, buf := newJSONLogger(t, InfoLevel)

	child := log.WithFields(map[string]interface{}{"component": "repo"})
	child.Info("child", nil)
	log.Info("parent", nil)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "repo", lines[0]["component"])
	assert.NotContains(t, lines[1], "component")
}

func TestLogger_ContextAddsTraceID(t *testing.T) {
	shutdown, err := tracing.Init(context.Background(), "logger-test", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	log, buf := newJSONLogger(t, InfoLevel)
	ctx, span := tracing.StartSpan(context.Background(), "op")
	defer span.End()

	log.InfoContext(ctx, "traced", nil)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, tracing.GetTraceID(ctx), lines[0]["trace_id"])
	assert.Equal(t, tracing.GetSpanID(ctx), lines[0]["span_id"])
}

func TestParseLevel(t *testing.T) {
	cases := map[LogLevel]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
		InfoLevel: zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewNop_DiscardsSafely(t *testing.T) {
	log := NewNop()
	log.Info("nothing", map[string]interface{}{"k": "v"})
	log.WithContext(context.Background()).Debug("nothing", nil)
}
