package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"quizzed/internal/config"
)

func TestNew(t *testing.T) {
	dev, err := New(&config.AppConfig{Env: "development"})
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel), "development logger should enable debug")

	prod, err := New(&config.AppConfig{Env: "production"})
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel), "production logger should not enable debug")
}
