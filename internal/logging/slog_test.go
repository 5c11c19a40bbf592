package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextLevelsFiltered(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "text", "warn")
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	assert.NotContains(t, out, "msg=dbg")
	assert.NotContains(t, out, "msg=inf")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "c=3")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "d=4")
}

func TestNew_JSONWithAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json", "debug").With("component", "pool")

	log.Debug(context.Background(), "acquired", "conn", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "acquired", line["msg"])
	assert.Equal(t, "pool", line["component"])
	assert.EqualValues(t, 3, line["conn"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestDiscard_DoesNotPanic(t *testing.T) {
	log := Discard()
	ctx := context.TODO()
	assert.NotPanics(t, func() {
		log.Info(ctx, "x")
		log.With("k", "v").Error(ctx, strings.Repeat("y", 3))
	})
}
