package environment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

func runnerWith(t *testing.T, src string) *interp.Runner {
	t.Helper()
	runner, err := interp.New(interp.Env(expand.ListEnviron()))
	require.NoError(t, err)
	prog, err := syntax.NewParser().Parse(strings.NewReader(src), "")
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background(), prog))
	return runner
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected zapcore.Level
	}{
		{"unset", "", zapcore.InfoLevel},
		{"debug", "BISH_LOG_LEVEL=debug", zapcore.DebugLevel},
		{"upper case", "BISH_LOG_LEVEL=WARN", zapcore.WarnLevel},
		{"invalid", "BISH_LOG_LEVEL=chatty", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := GetLogLevel(runnerWith(t, tt.src))
			assert.Equal(t, tt.expected, level.Level())
		})
	}

	assert.Equal(t, zapcore.InfoLevel, GetLogLevel(nil).Level())
}

func TestShouldCleanLogFile(t *testing.T) {
	assert.False(t, ShouldCleanLogFile(nil))
	assert.False(t, ShouldCleanLogFile(runnerWith(t, "")))
	assert.True(t, ShouldCleanLogFile(runnerWith(t, "BISH_CLEAN_LOG_FILE=yes")))
	assert.True(t, ShouldCleanLogFile(runnerWith(t, "BISH_CLEAN_LOG_FILE=1")))
	assert.False(t, ShouldCleanLogFile(runnerWith(t, "BISH_CLEAN_LOG_FILE=nope")))
}
