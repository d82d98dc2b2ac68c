// Package logging provides opt-in diagnostic logging for normgate.
//
// This is a library first: by default the logger is a no-op and evaluation
// emits nothing. CLI users opt in via NORMGATE_LOG_LEVEL or --verbose.
// Logging never affects evaluation outcomes.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLogLevel is the environment variable that opts into diagnostics.
const EnvLogLevel = "NORMGATE_LOG_LEVEL"

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// L returns the package logger. No-op unless Configure enabled a level.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Configure sets up diagnostic logging at the given level.
//
// An empty level falls back to NORMGATE_LOG_LEVEL; if that is also empty the
// logger is reset to a no-op. Called explicitly by the CLI; repeated calls
// replace the previous configuration.
func Configure(level string) error {
	resolved := strings.TrimSpace(level)
	if resolved == "" {
		resolved = strings.TrimSpace(os.Getenv(EnvLogLevel))
	}

	mu.Lock()
	defer mu.Unlock()

	if resolved == "" {
		logger = zap.NewNop()
		return nil
	}

	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(strings.ToLower(resolved))); err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	logger = built.Named("normgate")
	return nil
}
