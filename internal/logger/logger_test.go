package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestAppLogger_LevelFallsBackToInfo(t *testing.T) {
	l := NewAppLogger(&Config{LogLevel: "verbose"})
	assert.Equal(t, zapcore.InfoLevel, l.getLoggerLevel())

	l = NewAppLogger(&Config{LogLevel: "debug"})
	assert.Equal(t, zapcore.DebugLevel, l.getLoggerLevel())
}

func TestAppLogger_WithKeepsSettings(t *testing.T) {
	l := NewAppLogger(&Config{LogLevel: "warn", DevMode: true})
	l.InitLogger()

	child := l.With(zap.String("user", "a@b.c"))
	assert.NotNil(t, child.Logger())
	assert.NotSame(t, l.Logger(), child.Logger())
	assert.True(t, child.Logger().Core().Enabled(zapcore.WarnLevel))
	assert.False(t, child.Logger().Core().Enabled(zapcore.InfoLevel))
}

func TestNewAppLogger_NilConfig(t *testing.T) {
	l := NewAppLogger(nil)
	l.InitLogger()
	assert.NotNil(t, l.Logger())
}
