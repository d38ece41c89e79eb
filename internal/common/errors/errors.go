// internal/common/errors/errors.go
// Package errors provides standardized error handling for the admin console.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFetchFailed    ErrorCode = "FETCH_FAILED"
	ErrCodeFetchTimeout   ErrorCode = "FETCH_TIMEOUT"
	ErrCodeDecodeFailed   ErrorCode = "RESPONSE_DECODE_FAILED"
	ErrCodeActionFailed   ErrorCode = "ACTION_FAILED"
	ErrCodeActionRejected ErrorCode = "ACTION_REJECTED"

	ErrCodeInvalidDecision  ErrorCode = "INVALID_DECISION"
	ErrCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"

	ErrCodeSessionInvalid ErrorCode = "SESSION_INVALID"
	ErrCodeSessionExpired ErrorCode = "SESSION_EXPIRED"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewFetchFailedError creates a retryable list fetch error. The message is the
// user-visible string; details keep the transport-level cause.
func NewFetchFailedError(list, message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeFetchFailed,
		Message:   message,
		Details:   details,
		Retryable: true,
		Metadata:  map[string]interface{}{"list": list},
		Timestamp: time.Now().UTC(),
	}
}

// NewFetchTimeoutError creates a retryable fetch timeout error.
func NewFetchTimeoutError(list string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchTimeout,
		Message:   "Request to the backend timed out",
		Details:   fmt.Sprintf("list: %s", list),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecodeFailedError creates a non-retryable response decode error.
func NewDecodeFailedError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecodeFailed,
		Message:   "Unexpected response from the backend",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewActionFailedError creates an approve/decline transport error. The caller
// re-surfaces it so confirmation dialogs keep their drafted state.
func NewActionFailedError(action, message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeActionFailed,
		Message:   message,
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"action": action},
		Timestamp: time.Now().UTC(),
	}
}

// NewActionRejectedError creates a non-retryable backend rejection error.
func NewActionRejectedError(action, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActionRejected,
		Message:   message,
		Details:   fmt.Sprintf("action: %s", action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidDecisionError creates a non-retryable decline payload error.
func NewInvalidDecisionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDecision,
		Message:   "Decline reason did not pass validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentNotFoundError creates a non-retryable document resolution error.
func NewDocumentNotFoundError(kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentNotFound,
		Message:   "Requested document is not attached to this application",
		Details:   fmt.Sprintf("kind: %s", kind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionInvalidError creates a non-retryable session error.
func NewSessionInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionInvalid,
		Message:   "Session is missing or malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionExpiredError creates a non-retryable session expiry error.
func NewSessionExpiredError(token string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionExpired,
		Message:   "Session has expired",
		Details:   fmt.Sprintf("token: %s", token),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. Callers fall back
// to the backend when the cache is down.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Count cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// UserMessage extracts the user-visible message from an error, with a generic
// fallback for anything that is not a StandardError.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if stdErr, ok := err.(*StandardError); ok && stdErr.Message != "" {
		return stdErr.Message
	}
	return "Something went wrong. Please try again."
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "FETCH") || strings.Contains(codeStr, "DECODE"):
		return "FETCH"
	case strings.Contains(codeStr, "ACTION") || strings.Contains(codeStr, "DECISION"):
		return "ACTION"
	case strings.Contains(codeStr, "DOCUMENT"):
		return "DOCUMENT"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	default:
		return "OTHER"
	}
}
