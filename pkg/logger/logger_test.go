package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "json", slog.LevelInfo, false)

	ctx := WithRequestID(context.Background(), "req-1")
	FromContext(ctx, l).Info("rental created", "rental_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rental created", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.EqualValues(t, 7, entry["rental_id"])
	assert.NotContains(t, entry, "trace_id")
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "text", slog.LevelWarn, false)
	l.Info("hidden")
	assert.Empty(t, buf.String())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	_, err = parseLevel("verbose")
	assert.Error(t, err)
}

func TestNew_Stdout(t *testing.T) {
	l, closer, err := New(Options{Level: "info", Format: "text"})
	require.NoError(t, err)
	assert.NotNil(t, l)
	assert.NoError(t, closer())
}
