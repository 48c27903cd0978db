package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Sugar().Infow("logger up", "mode", "prod") })
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewDevMode(t *testing.T) {
	t.Setenv("LOG_MODE", "dev")
	logger := New()
	assert.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
