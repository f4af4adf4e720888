package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type echoTool struct {
	*DefaultTool
}

func (t *echoTool) Call(ctx context.Context, args json.RawMessage) ([]byte, error) {
	return args, nil
}

func newEchoTool(name string) *echoTool {
	return &echoTool{DefaultTool: NewDefaultTool(name, "Echo", "Echoes its arguments", Schema{Type: "object"})}
}

func TestRegistry_RegisterAndCall(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newEchoTool("echo"))

	if _, ok := registry.Get("echo"); !ok {
		t.Fatal("Expected echo tool to be registered")
	}

	out, err := registry.Call(context.Background(), "echo", json.RawMessage(`{"a":1}`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(out) != `{"a":1}` {
		t.Errorf("Expected echoed args, got %s", out)
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Call(context.Background(), "missing", nil)

	var toolErr *Error
	if !errors.As(err, &toolErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if toolErr.Code != ErrToolNotFound {
		t.Errorf("Expected %s, got %s", ErrToolNotFound, toolErr.Code)
	}
}

func TestRegistry_DefinitionsSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newEchoTool("zeta"))
	registry.Register(newEchoTool("alpha"))
	registry.Register(newEchoTool("mid"))

	defs := registry.Definitions()
	if len(defs) != 3 {
		t.Fatalf("Expected 3 definitions, got %d", len(defs))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if defs[i].Name != want {
			t.Errorf("Expected %s at %d, got %s", want, i, defs[i].Name)
		}
	}
}

func TestDefaultTool(t *testing.T) {
	tool := NewDefaultTool("plain", "Plain", "No call", Schema{Type: "object"})

	if _, err := tool.Call(context.Background(), nil); err == nil {
		t.Error("Expected DefaultTool.Call to fail")
	}

	def := tool.Definition()
	if def.Name != "plain" || def.Title != "Plain" {
		t.Errorf("Unexpected definition %+v", def)
	}
	if def.Annotations == nil || !def.Annotations.ReadOnlyHint || def.Annotations.DestructiveHint {
		t.Errorf("Expected read-only, non-destructive annotations, got %+v", def.Annotations)
	}
}

func TestNewArgumentError(t *testing.T) {
	cause := errors.New("bad json")
	err := NewArgumentError("search", cause)

	if err.Code != ErrInvalidArguments {
		t.Errorf("Expected %s, got %s", ErrInvalidArguments, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected cause to be wrapped")
	}
}
