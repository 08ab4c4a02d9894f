package wtlog_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/fulmenhq/walktree/wtlog"
)

func TestNewDefaultsToInfoConsole(t *testing.T) {
	logger, err := wtlog.New(nil)
	if err != nil {
		t.Fatalf("New(nil): %v", err)
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info level enabled by default")
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level disabled by default")
	}
}

func TestNewWithFileSink(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "walktree.log")

	logger, err := wtlog.New(&wtlog.Config{Level: "debug", FilePath: logPath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("hello")
	_ = logger.Sync()

	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("expected log file to be created: %v", err)
	}
}

func TestNop(t *testing.T) {
	logger := wtlog.Nop()
	// Nop logger must not panic and must not write anywhere observable.
	logger.Info("ignored")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("WALKTREE_LOG_LEVEL", "debug")
	t.Setenv("WALKTREE_LOG_JSON", "true")

	cfg := wtlog.ConfigFromEnv()
	if cfg.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Level)
	}
	if !cfg.JSON {
		t.Errorf("JSON = false, want true")
	}
}

func TestMustNewPanicsNever(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustNew panicked unexpectedly: %v", r)
		}
	}()
	_ = wtlog.MustNew(&wtlog.Config{Level: "warn"})
}
