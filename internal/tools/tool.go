package tools

import (
	"context"
	"encoding/json"
)

// Tool is the interface that all tools must implement.
type Tool interface {
	// Name returns the name of the tool.
	Name() string

	// Definition returns the MCP tools/list entry for the tool.
	Definition() Definition

	// Call executes the tool with JSON-encoded arguments. The returned bytes are
	// relayed to the client as text content.
	Call(ctx context.Context, args json.RawMessage) ([]byte, error)
}

// Definition is a tool as advertised by tools/list.
type Definition struct {
	Name        string       `json:"name"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description"`
	InputSchema Schema       `json:"inputSchema"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// Schema is the subset of JSON Schema used for tool inputs.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Default     any                `json:"default,omitempty"`
	Minimum     *int               `json:"minimum,omitempty"`
	Maximum     *int               `json:"maximum,omitempty"`
	Pattern     string             `json:"pattern,omitempty"`
	UniqueItems bool               `json:"uniqueItems,omitempty"`
}

// Annotations are behavioural hints for clients.
type Annotations struct {
	Title           string `json:"title,omitempty"`
	ReadOnlyHint    bool   `json:"readOnlyHint"`
	DestructiveHint bool   `json:"destructiveHint"`
	IdempotentHint  bool   `json:"idempotentHint"`
	OpenWorldHint   bool   `json:"openWorldHint"`
}

// Bound returns a pointer for Schema.Minimum/Maximum.
func Bound(v int) *int { return &v }
