package tools

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// Error codes for tool dispatch
const (
	ErrToolNotFound     = "tool_not_found"
	ErrInvalidArguments = "invalid_arguments"
)

// Registry manages the collection of available tools.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a new tool to the registry, replacing any tool with the same name.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools[tool.Name()] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// Definitions returns the definitions of all tools sorted by name.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Call executes a tool with the given arguments and context.
func (r *Registry) Call(ctx context.Context, toolName string, args json.RawMessage) ([]byte, error) {
	tool, exists := r.Get(toolName)
	if !exists {
		return nil, &Error{Code: ErrToolNotFound, Message: "Tool not found: " + toolName}
	}

	return tool.Call(ctx, args)
}

// Error represents a tool dispatch error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewArgumentError reports arguments that could not be decoded.
func NewArgumentError(tool string, cause error) *Error {
	return &Error{
		Code:    ErrInvalidArguments,
		Message: "invalid arguments for " + tool + ": " + cause.Error(),
		Cause:   cause,
	}
}
