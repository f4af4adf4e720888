package session

import "fmt"

// Error codes for session operations
const (
	ErrSessionNotFound   = "SESSION_NOT_FOUND"
	ErrSessionExpired    = "SESSION_EXPIRED"
	ErrSessionInvalid    = "SESSION_INVALID"
	ErrSessionGeneration = "SESSION_GENERATION_FAILED"
	ErrSessionStorage    = "SESSION_STORAGE_ERROR"
)

// SessionError is returned by Manager and Store operations.
type SessionError struct {
	Code    string
	Message string
	Cause   error
}

func (e *SessionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *SessionError) Unwrap() error {
	return e.Cause
}

// NewSessionNotFoundError creates a session not found error
func NewSessionNotFoundError(sessionID string) *SessionError {
	return &SessionError{
		Code:    ErrSessionNotFound,
		Message: fmt.Sprintf("session not found: %s", sessionID),
	}
}

// NewSessionExpiredError creates a session expired error
func NewSessionExpiredError(sessionID string) *SessionError {
	return &SessionError{
		Code:    ErrSessionExpired,
		Message: fmt.Sprintf("session expired: %s", sessionID),
	}
}

// NewSessionInvalidError creates a session invalid error
func NewSessionInvalidError(reason string) *SessionError {
	return &SessionError{
		Code:    ErrSessionInvalid,
		Message: fmt.Sprintf("session invalid: %s", reason),
	}
}

// NewSessionGenerationError creates a session generation error
func NewSessionGenerationError(cause error) *SessionError {
	return &SessionError{
		Code:    ErrSessionGeneration,
		Message: "failed to generate session ID",
		Cause:   cause,
	}
}

// NewSessionStorageError creates a session storage error
func NewSessionStorageError(operation string, cause error) *SessionError {
	return &SessionError{
		Code:    ErrSessionStorage,
		Message: fmt.Sprintf("session storage error during %s", operation),
		Cause:   cause,
	}
}

// ErrorCode returns the SessionError code of err, or "" if err is not one.
func ErrorCode(err error) string {
	if sessionErr, ok := err.(*SessionError); ok {
		return sessionErr.Code
	}
	return ""
}
