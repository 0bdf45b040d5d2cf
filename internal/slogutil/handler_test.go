package slogutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestFsortHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Info("entry resolved", "source", "cache", "id", 42)

	output := buf.String()
	for _, want := range []string{"[info]", "entry resolved", " | source=cache", "id=42"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("record should end with a newline")
	}
}

func TestFsortHandler_NoAttrs(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo).Info("plain")

	if strings.Contains(buf.String(), "|") {
		t.Errorf("no separator expected without attributes, got: %s", buf.String())
	}
}

func TestFsortHandler_QuotesSpaces(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo).Info("queued", "path", "/tmp/My Photos/a.png")

	if !strings.Contains(buf.String(), `path="/tmp/My Photos/a.png"`) {
		t.Errorf("path should be quoted, got: %s", buf.String())
	}
}

func TestFsortHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).With("batch", 7).WithGroup("classifier")

	logger.Info("call", "provider", "ollama")

	output := buf.String()
	if !strings.Contains(output, "batch=7") {
		t.Errorf("expected pre-set attr, got: %s", output)
	}
	if !strings.Contains(output, "classifier.provider=ollama") {
		t.Errorf("expected grouped key, got: %s", output)
	}
}

func TestFsortHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("messages below warn should be filtered: %s", output)
	}
	if !strings.Contains(output, "[warn] warn message") || !strings.Contains(output, "[error] error message") {
		t.Errorf("warn and error should be included: %s", output)
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LevelFromString(tt.input); got != tt.expected {
				t.Errorf("LevelFromString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		quiet     bool
		expected  slog.Level
	}{
		{0, false, slog.LevelWarn},
		{1, false, slog.LevelInfo},
		{2, false, slog.LevelDebug},
		{0, true, LevelSilent},
		{5, true, LevelSilent},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity, tt.quiet); got != tt.expected {
			t.Errorf("LevelFromVerbosity(%d, %v) = %v, want %v", tt.verbosity, tt.quiet, got, tt.expected)
		}
	}
}

func TestOrDiscard(t *testing.T) {
	logger := OrDiscard(nil)
	logger.Error("dropped")

	own := NewDiscardLogger()
	if OrDiscard(own) != own {
		t.Error("OrDiscard should return a non-nil logger unchanged")
	}
}

func TestTeeHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := NewFsortHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := NewFsortHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := slog.New(NewTeeHandler(h1, h2)).With("dir", "/tmp")
	logger.Info("info message")
	logger.Warn("warn message")

	if !strings.Contains(buf1.String(), "info message") || !strings.Contains(buf1.String(), "warn message") {
		t.Errorf("buf1 should contain both messages: %s", buf1.String())
	}
	if strings.Contains(buf2.String(), "info message") {
		t.Error("buf2 should not contain info message")
	}
	if !strings.Contains(buf2.String(), "warn message | dir=/tmp") {
		t.Errorf("buf2 should contain warn message with attrs: %s", buf2.String())
	}
}
