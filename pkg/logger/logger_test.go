package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("json logger at warn level", func(t *testing.T) {
		l, err := New(Options{Level: "warn", Format: "json", Output: "stderr"})
		require.NoError(t, err)

		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
		assert.Same(t, l, zap.L(), "global logger should be replaced")
	})

	t.Run("defaults", func(t *testing.T) {
		l, err := New(Options{})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := New(Options{Level: "loud"})
		assert.Error(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := New(Options{Format: "xml"})
		assert.Error(t, err)
	})
}
