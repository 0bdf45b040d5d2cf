package slogutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fsort/internal/config"
)

func TestLoggerFactory_WritesLogFile(t *testing.T) {
	dataDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "debug"
	quiet := LevelSilent

	f := NewLoggerFactory(dataDir, cfg, &quiet)
	logger := f.CLILogger()
	logger.Debug("cache miss", "file", "a.png")
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "logs", "fsort.log"))
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	if !strings.Contains(string(data), "[debug] cache miss | file=a.png") {
		t.Errorf("log file content = %q", data)
	}
}

func TestLoggerFactory_FileDisabled(t *testing.T) {
	dataDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Logging.File = false

	f := NewLoggerFactory(dataDir, cfg, nil)
	f.CLILogger().Info("console only")
	_ = f.Close()

	if _, err := os.Stat(filepath.Join(dataDir, "logs", "fsort.log")); !os.IsNotExist(err) {
		t.Error("no log file expected when logging.file is false")
	}
}

func TestLoggerFactory_ConsoleLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "error"

	f := NewLoggerFactory("", cfg, nil)
	if got := f.consoleLevel(); got != slog.LevelError {
		t.Errorf("consoleLevel = %v, want error", got)
	}

	debug := slog.LevelDebug
	f = NewLoggerFactory("", cfg, &debug)
	if got := f.consoleLevel(); got != slog.LevelDebug {
		t.Errorf("consoleLevel = %v, want debug from flag", got)
	}
}
