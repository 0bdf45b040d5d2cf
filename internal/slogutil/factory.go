package slogutil

import (
	"io"
	"log/slog"
	"os"

	"fsort/internal/config"
	"fsort/internal/paths"
)

// LoggerFactory builds the CLI logger from config and command-line flags.
// Precedence for the level: CLI flag > config > info.
type LoggerFactory struct {
	dataDir  string
	config   *config.Config
	cliLevel *slog.Level
	stderr   *os.File
	closers  []io.Closer
}

// NewLoggerFactory creates a factory. cliLevel is nil when no flag was given.
func NewLoggerFactory(dataDir string, cfg *config.Config, cliLevel *slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		dataDir:  dataDir,
		config:   cfg,
		cliLevel: cliLevel,
		stderr:   os.Stderr,
	}
}

// CLILogger returns a logger writing to stderr and, when logging.file is
// enabled, to <dataDir>/logs/fsort.log as well. The file always receives
// the configured level so it keeps detail even when the console is quiet.
func (f *LoggerFactory) CLILogger() *slog.Logger {
	console := NewConsoleHandler(f.stderr, f.consoleLevel())
	if !f.config.Logging.File || f.dataDir == "" {
		return slog.New(console)
	}

	logPath, err := paths.LogPath(f.dataDir)
	if err != nil {
		return slog.New(console)
	}
	fileLevel := LevelFromString(f.config.Logging.Level)
	fileLogger, closer, err := NewFileLoggerWithRotation(logPath, fileLevel, f.config.Logging.MaxSize, f.config.Logging.MaxBackups)
	if err != nil {
		slog.New(console).Warn("log file unavailable", "path", logPath, "error", err)
		return slog.New(console)
	}
	f.closers = append(f.closers, closer)

	return slog.New(NewTeeHandler(console, fileLogger.Handler()))
}

func (f *LoggerFactory) consoleLevel() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	return LevelFromString(f.config.Logging.Level)
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
