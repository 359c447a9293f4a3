package dlogger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oneconcern/strata/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestGetLogger(t *testing.T) {
	l, err := GetLogger(LogLevelDebug)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = GetLogger(LogLevelWarn)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = GetLogger(LogLevelNone)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))

	l, err = GetLogger("")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))

	_, err = GetLogger("verbose")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLevel))

	assert.Panics(t, func() { _ = MustGetLogger("verbose") })
}

func TestParseLevel(t *testing.T) {
	for _, level := range Levels() {
		got, err := ParseLevel(strings.ToUpper(level))
		require.NoError(t, err)
		assert.Equal(t, level, got)
	}

	// zap accepts these, the command line does not
	for _, level := range []string{"dpanic", "panic", "fatal", "verbose"} {
		_, err := ParseLevel(level)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "debug, info, warn, error, none")
	}
}

func TestConsoleOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "strata.log")
	l, err := GetLogger(LogLevelInfo, Console(), Name("cli"), OutputPaths(out))
	require.NoError(t, err)

	l.Info("hello", zap.String("op", "abc"))
	_ = l.Sync()

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	line := string(b)
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "cli")
	assert.Contains(t, line, "hello")
	assert.Contains(t, line, `{"op": "abc"}`)
	assert.False(t, strings.HasPrefix(line, "{"), "console encoding is not json")
}
