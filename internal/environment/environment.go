package environment

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"mvdan.cc/sh/v3/interp"
)

func isTruthy(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// GetLogLevel reads BISH_LOG_LEVEL; unset or invalid values mean info.
func GetLogLevel(runner *interp.Runner) zap.AtomicLevel {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if runner == nil {
		return level
	}
	if val := strings.TrimSpace(runner.Vars["BISH_LOG_LEVEL"].String()); val != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(val))); err != nil {
			return zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}
	return level
}

// ShouldCleanLogFile checks if BISH_CLEAN_LOG_FILE is enabled
func ShouldCleanLogFile(runner *interp.Runner) bool {
	if runner == nil {
		return false
	}
	return isTruthy(runner.Vars["BISH_CLEAN_LOG_FILE"].String())
}
