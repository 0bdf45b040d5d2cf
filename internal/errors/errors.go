package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidInput indicates a malformed argument or entry
	InvalidInput ErrorCode = "INVALID_INPUT"
	// ClassifierUnavailable indicates the classifier could not be constructed or reached
	ClassifierUnavailable ErrorCode = "CLASSIFIER_UNAVAILABLE"
	// StorageFailed indicates the taxonomy store rejected a read or write
	StorageFailed ErrorCode = "STORAGE_FAILED"
	// WhitelistNotFound indicates a named whitelist does not exist
	WhitelistNotFound ErrorCode = "WHITELIST_NOT_FOUND"
	// ConfigInvalid indicates configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests changing a config value
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Key         string        `json:"key,omitempty"`
	Description string        `json:"description,omitempty"`
}

// FsortError carries a stable code, a human message and suggested fixes.
type FsortError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates an FsortError with the default fixes for its code.
func New(code ErrorCode, message string, cause error) *FsortError {
	return &FsortError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *FsortError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *FsortError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *FsortError) WithDetails(details interface{}) *FsortError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first FsortError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var fe *FsortError
	if stderrors.As(err, &fe) {
		return fe.Code
	}
	return InternalError
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var fe *FsortError
	return stderrors.As(err, &fe) && fe.Code == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ClassifierUnavailable: {
		{
			Type:        EditConfig,
			Key:         "classifier.provider",
			Description: "Check the classifier provider, model and API key",
		},
		{
			Type:        RunCommand,
			Command:     "fsort config show",
			Description: "Inspect the effective configuration",
		},
	},
	WhitelistNotFound: {
		{
			Type:        RunCommand,
			Command:     "fsort whitelist list",
			Description: "List the available whitelists",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "fsort config show",
			Description: "Inspect the effective configuration",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
