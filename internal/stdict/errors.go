package stdict

import (
	"errors"
	"fmt"
	"strings"
)

// Validation failure kinds
const (
	KindMissing     = "missing required field"
	KindEnumeration = "invalid enumeration value"
	KindRange       = "value out of range"
	KindFormat      = "invalid format"
)

// ValidationError reports a caller parameter that violates the upstream API contract.
// It is produced before any network traffic.
type ValidationError struct {
	Field   string
	Kind    string
	Value   string
	Allowed []string
	Detail  string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Field, e.Kind)
	if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}
	if len(e.Allowed) > 0 {
		fmt.Fprintf(&b, " (allowed: %s)", strings.Join(e.Allowed, ", "))
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}

func newMissingError(field string) *ValidationError {
	return &ValidationError{Field: field, Kind: KindMissing}
}

func newEnumError(field, value string, allowed []string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Kind:    KindEnumeration,
		Value:   value,
		Allowed: append([]string(nil), allowed...),
	}
}

func newRangeError(field string, value int, detail string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Kind:   KindRange,
		Value:  fmt.Sprint(value),
		Detail: detail,
	}
}

func newFormatError(field, value, detail string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Kind:   KindFormat,
		Value:  value,
		Detail: detail,
	}
}

// UpstreamError is returned when the dictionary API answered but rejected the request,
// either with a non-2xx status or with its own error envelope. Body is kept verbatim.
type UpstreamError struct {
	StatusCode int
	Body       []byte
	APICode    string
	APIMessage string
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.APICode != "" {
		return fmt.Sprintf("upstream error %s (status %d): %s", e.APICode, e.StatusCode, e.APIMessage)
	}
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, string(e.Body))
}

// TransportError is returned when no response was received from the dictionary API.
type TransportError struct {
	Endpoint string
	Cause    error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Cause)
}

// Unwrap returns the underlying cause
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the failure was a deadline or client timeout.
func (e *TransportError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Cause, &t) && t.Timeout()
}
