package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestWithOperation_KeepsOuterID(t *testing.T) {
	ctx := WithOperation(context.Background(), "outer")
	id := OperationID(ctx)
	require.NotEmpty(t, id)

	inner := WithOperation(ctx, "inner")
	assert.Equal(t, id, OperationID(inner))
}

func TestOperationID_Empty(t *testing.T) {
	assert.Empty(t, OperationID(context.Background()))
}

func TestFromContext_StampsOperation(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	Setup(&buf, "debug", "json")
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := WithOperation(context.Background(), "csv import")
	WithFields(ctx, "table", "people").Info("done", "rows", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "done", entry["msg"])
	assert.Equal(t, "csv import", entry["op"])
	assert.Equal(t, OperationID(ctx), entry["op_id"])
	assert.Equal(t, "people", entry["table"])
	assert.EqualValues(t, 2, entry["rows"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "text")

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
