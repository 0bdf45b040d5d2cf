package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(ClassifierUnavailable, "ollama not reachable", cause)

	if err.Code != ClassifierUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ClassifierUnavailable)
	}
	if len(err.SuggestedFixes) != 2 {
		t.Errorf("len(SuggestedFixes) = %d, want 2", len(err.SuggestedFixes))
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestFsortError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      StorageFailed,
			message:   "upsert failed",
			cause:     errors.New("database is locked"),
			wantParts: []string{"STORAGE_FAILED", "upsert failed", "database is locked"},
		},
		{
			name:      "without cause",
			code:      WhitelistNotFound,
			message:   "whitelist \"media\" not found",
			wantParts: []string{"WHITELIST_NOT_FOUND", "whitelist \"media\" not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.code, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want it to contain %q", got, part)
				}
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("batch: %w", New(ConfigInvalid, "bad timeout", nil))

	if got := CodeOf(wrapped); got != ConfigInvalid {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, ConfigInvalid)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
	if !Is(wrapped, ConfigInvalid) {
		t.Error("Is(wrapped, ConfigInvalid) = false")
	}
	if Is(wrapped, StorageFailed) {
		t.Error("Is(wrapped, StorageFailed) = true")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(InvalidInput, "empty name", nil).WithDetails(map[string]string{"path": "/tmp"})
	if err.Details == nil {
		t.Error("Details should be set")
	}
	if GetSuggestedFixes(InternalError) != nil {
		t.Error("InternalError should have no suggested fixes")
	}
}
