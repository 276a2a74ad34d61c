package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), "hello")
}

func TestFromContextPanicsWhenMissing(t *testing.T) {
	require.PanicsWithValue(t, "ctxlog: logger missing from context", func() {
		FromContext(context.Background())
	})
}
