// Package jsonrpc holds the JSON-RPC 2.0 envelope types used by the MCP transports.
package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const Version = "2.0"

// ID is kept raw so numeric and string identifiers round-trip unchanged.
type ID = json.RawMessage

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      ID     `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

type Notification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ErrorCode int

const (
	ParseError     ErrorCode = -32700
	InvalidRequest ErrorCode = -32600
	MethodNotFound ErrorCode = -32601
	InvalidParams  ErrorCode = -32602
	InternalError  ErrorCode = -32603
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string, data any) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewResult builds a successful response. A nil result is sent as {}.
func NewResult(id ID, result any) *Response {
	if result == nil {
		result = struct{}{}
	}
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

// NewErrorResponse builds an error response. A missing id is sent as null.
func NewErrorResponse(id ID, err *Error) *Response {
	if len(id) == 0 {
		id = ID("null")
	}
	return &Response{JSONRPC: Version, ID: id, Error: err}
}

// ParseMessage decodes a single JSON-RPC message into a *Request,
// *Notification or *Response. Batches are rejected.
func ParseMessage(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return nil, NewError(InvalidRequest, "Batch requests are not supported", nil)
	}

	var msg struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      ID              `json:"id,omitempty"`
		Method  string          `json:"method,omitempty"`
		Params  json.RawMessage `json:"params,omitempty"`
		Error   *Error          `json:"error,omitempty"`
		Result  json.RawMessage `json:"result,omitempty"`
	}

	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return nil, NewError(ParseError, "Parse error", nil)
	}

	if msg.JSONRPC != Version {
		return nil, NewError(InvalidRequest, "Invalid JSON-RPC version", nil)
	}

	hasID := len(msg.ID) > 0 && string(msg.ID) != "null"

	if !hasID && msg.Method != "" {
		return &Notification{
			JSONRPC: msg.JSONRPC,
			Method:  msg.Method,
			Params:  msg.Params,
		}, nil
	}

	if hasID && msg.Method != "" {
		return &Request{
			JSONRPC: msg.JSONRPC,
			ID:      msg.ID,
			Method:  msg.Method,
			Params:  msg.Params,
		}, nil
	}

	if hasID && (msg.Result != nil || msg.Error != nil) {
		resp := &Response{
			JSONRPC: msg.JSONRPC,
			ID:      msg.ID,
			Error:   msg.Error,
		}
		if msg.Result != nil {
			resp.Result = msg.Result
		}
		return resp, nil
	}

	return nil, NewError(InvalidRequest, "Invalid message", nil)
}

// IDKey returns a comparable form of id for use as a map key.
func IDKey(id ID) string {
	return string(bytes.TrimSpace(id))
}
