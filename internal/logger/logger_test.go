package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestNew_Stdout(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"json", "console"} {
		l, err := New(Config{Level: "debug", Format: format, Output: "stdout"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	}
}

func TestNew_FileOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "service.log")
	l, err := New(Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	l.Info("browser engine ready")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"browser engine ready"`))
	assert.True(t, strings.Contains(string(data), `"level":"info"`))
}

func TestNew_UnwritableFile(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestNew_LevelFiltering(t *testing.T) {
	t.Parallel()

	l, err := New(Config{Level: "warn", Output: "stderr"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
