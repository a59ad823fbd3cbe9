package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "development")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("warn", "production")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "production")
	assert.Error(t, err)
}

func TestLogConfigLoad(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	LogConfigLoad(zap.New(core), ".env", []string{`env var REDIS_DB is not an integer ("x"), using fallback: 0`})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, ".env", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Contains(t, entries[1].ContextMap()["detail"], "REDIS_DB")
}
