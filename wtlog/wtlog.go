// Package wtlog builds the zap logger the traversal engine and its
// extractors use for structured diagnostics. Modeled on the teacher's
// logging.New/buildCore (logging/logger.go), trimmed of the
// policy-enforcement, middleware pipeline and throttling machinery a
// synchronous, single-process library has no use for: walktree never
// serves concurrent tenants that need rate-limited or redacted log
// sinks, so Config only keeps the two knobs that matter here — sink
// selection and level.
package wtlog

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the logger returned by New.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to
	// "info" when empty.
	Level string

	// FilePath, when non-empty, adds a rotating file sink alongside
	// stderr, using the teacher's lumberjack defaults.
	FilePath string

	// JSON selects the JSON encoder; otherwise a human-readable
	// console encoder is used (teacher's "console"/"json" sink
	// formats, collapsed to a single bool since walktree has exactly
	// one sink of each kind rather than an arbitrary sink list).
	JSON bool
}

// New builds a *zap.Logger per config. A nil or zero-value config
// yields an info-level, console-encoded, stderr-only logger.
func New(config *Config) (*zap.Logger, error) {
	if config == nil {
		config = &Config{}
	}

	level := parseLevel(config.Level)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "severity",
		NameKey:        "logger",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if config.JSON {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level),
	}

	if config.FilePath != "" {
		lumber := &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    100,
			MaxAge:     28,
			MaxBackups: 5,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(lumber), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "", "info":
		return zapcore.InfoLevel
	default:
		return zapcore.InfoLevel
	}
}

// Nop returns a logger that discards everything, for callers (tests,
// library consumers that don't want diagnostics) that never configured
// one explicitly.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// ConfigFromEnv reads WALKTREE_LOG_LEVEL / WALKTREE_LOG_FILE /
// WALKTREE_LOG_JSON the way the teacher's CLI entry points fall back to
// environment configuration when no explicit config file is supplied.
func ConfigFromEnv() *Config {
	return &Config{
		Level:    os.Getenv("WALKTREE_LOG_LEVEL"),
		FilePath: os.Getenv("WALKTREE_LOG_FILE"),
		JSON:     os.Getenv("WALKTREE_LOG_JSON") == "true",
	}
}

// MustNew is New but panics on error, for cmd/walktree's startup path
// where a logger failure is unrecoverable.
func MustNew(config *Config) *zap.Logger {
	logger, err := New(config)
	if err != nil {
		panic(fmt.Sprintf("wtlog: %v", err))
	}
	return logger
}
