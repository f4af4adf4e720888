package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultTool carries a tool's name, description and schema. Tools embed it
// and provide their own Call.
type DefaultTool struct {
	name        string
	title       string
	description string
	schema      Schema
}

// NewDefaultTool creates a new DefaultTool.
func NewDefaultTool(name, title, description string, schema Schema) *DefaultTool {
	return &DefaultTool{
		name:        name,
		title:       title,
		description: description,
		schema:      schema,
	}
}

// Name returns the name of the tool.
func (t *DefaultTool) Name() string {
	return t.name
}

// Call is overridden by embedding tools.
func (t *DefaultTool) Call(ctx context.Context, args json.RawMessage) ([]byte, error) {
	return nil, fmt.Errorf("method not implemented for tool: %s", t.name)
}

// Definition returns the tool definition in MCP format. All tools served here
// are read-only lookups against an external service.
func (t *DefaultTool) Definition() Definition {
	return Definition{
		Name:        t.name,
		Title:       t.title,
		Description: t.description,
		InputSchema: t.schema,
		Annotations: &Annotations{
			Title:          t.title,
			ReadOnlyHint:   true,
			IdempotentHint: true,
			OpenWorldHint:  true,
		},
	}
}
