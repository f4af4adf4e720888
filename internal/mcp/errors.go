package mcp

import (
	"context"
	"errors"

	"stdict-mcp/internal/stdict"
)

// ToolError is the structuredContent of a failed tool call.
type ToolError struct {
	Type       string   `json:"type"`
	Message    string   `json:"message"`
	Field      string   `json:"field,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Value      string   `json:"value,omitempty"`
	Allowed    []string `json:"allowed,omitempty"`
	StatusCode int      `json:"status,omitempty"`
	APICode    string   `json:"api_code,omitempty"`
	APIMessage string   `json:"api_message,omitempty"`
	Body       string   `json:"body,omitempty"`
	Endpoint   string   `json:"endpoint,omitempty"`
	Timeout    bool     `json:"timeout,omitempty"`
}

// Tool error types
const (
	ErrorTypeValidation = "validation"
	ErrorTypeUpstream   = "upstream"
	ErrorTypeTransport  = "transport"
	ErrorTypeCancelled  = "cancelled"
	ErrorTypeInternal   = "internal"
)

// classifyToolError describes err for the caller. The Type field is also the
// outcome label used in logs.
func classifyToolError(err error) ToolError {
	var (
		verr *stdict.ValidationError
		uerr *stdict.UpstreamError
		terr *stdict.TransportError
	)

	switch {
	case errors.As(err, &verr):
		return ToolError{
			Type:    ErrorTypeValidation,
			Message: verr.Error(),
			Field:   verr.Field,
			Kind:    verr.Kind,
			Value:   verr.Value,
			Allowed: verr.Allowed,
		}
	case errors.As(err, &uerr):
		return ToolError{
			Type:       ErrorTypeUpstream,
			Message:    uerr.Error(),
			StatusCode: uerr.StatusCode,
			APICode:    uerr.APICode,
			APIMessage: uerr.APIMessage,
			Body:       string(uerr.Body),
		}
	case errors.Is(err, context.Canceled):
		te := ToolError{Type: ErrorTypeCancelled, Message: "request cancelled"}
		if errors.As(err, &terr) {
			te.Endpoint = terr.Endpoint
		}
		return te
	case errors.As(err, &terr):
		return ToolError{
			Type:     ErrorTypeTransport,
			Message:  terr.Error(),
			Endpoint: terr.Endpoint,
			Timeout:  terr.Timeout(),
		}
	default:
		return ToolError{Type: ErrorTypeInternal, Message: err.Error()}
	}
}

func errorResult(err error) (*CallToolResult, ToolError) {
	te := classifyToolError(err)
	return &CallToolResult{
		Content:           []Content{{Type: "text", Text: te.Message}},
		StructuredContent: te,
		IsError:           true,
	}, te
}
