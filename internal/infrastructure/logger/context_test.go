package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	logger := FromContext(context.Background())

	assert.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("dropped") })
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, enriched := WithRequestID(context.Background(), zap.New(core), "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	FromContext(ctx).Info("hello")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "req-123", logs[0].ContextMap()["request_id"])
	assert.NotNil(t, enriched)
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Equal(t, "", GetRequestID(context.Background()))
}
