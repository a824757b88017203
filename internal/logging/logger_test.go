package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewParsesLevel(t *testing.T) {
	ctx := context.Background()

	assert.True(t, New("debug").Enabled(ctx, slog.LevelDebug))
	assert.False(t, New("warn").Enabled(ctx, slog.LevelInfo))
	assert.False(t, New("error").Enabled(ctx, slog.LevelWarn))
}

func TestNewDefaultsToInfo(t *testing.T) {
	ctx := context.Background()

	for _, level := range []string{"", "verbose", "INFO "} {
		logger := New(level)
		assert.True(t, logger.Enabled(ctx, slog.LevelInfo), "level %q", level)
		assert.False(t, logger.Enabled(ctx, slog.LevelDebug), "level %q", level)
	}
}
