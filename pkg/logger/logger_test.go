package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestContextFieldsAppearInOutput(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithUserID(ctx, "user-1")
	ctx = logg.WithActorRole(ctx, "admin")
	ctx = logg.WithProductID(ctx, "prod-1")
	logg.Info(ctx, "stock movement recorded")

	line := decodeLine(t, &buf)
	assert.Equal(t, "test", line["service"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "user-1", line["user_id"])
	assert.Equal(t, "admin", line["actor_role"])
	assert.Equal(t, "prod-1", line["product_id"])
	assert.Equal(t, "stock movement recorded", line["message"])
}

func TestFieldsDoNotLeakAcrossContexts(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	_ = logg.WithProductID(context.Background(), "prod-1")
	logg.Info(context.Background(), "unrelated")

	line := decodeLine(t, &buf)
	_, present := line["product_id"]
	assert.False(t, present)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel("DEBUG").String())
	assert.Equal(t, "warn", ParseLevel(" warn ").String())
	assert.Equal(t, "info", ParseLevel("").String())
	assert.Equal(t, "info", ParseLevel("nonsense").String())
}
