// Package dictionary exposes the Standard Korean Dictionary search and detail
// lookups as MCP tools.
package dictionary

import (
	"context"
	"encoding/json"

	"stdict-mcp/internal/stdict"
	"stdict-mcp/internal/tools"
)

// Tool names
const (
	SearchToolName = "search"
	DetailToolName = "detail"
)

// Dictionary is the upstream client used by the tools.
type Dictionary interface {
	Search(ctx context.Context, req stdict.SearchRequest) ([]byte, error)
	Detail(ctx context.Context, req stdict.DetailRequest) ([]byte, error)
}

// SearchTool wraps search.do.
type SearchTool struct {
	*tools.DefaultTool
	client Dictionary
	apiKey string
}

// NewSearchTool creates the search tool. apiKey is used when the caller does
// not pass one.
func NewSearchTool(client Dictionary, apiKey string) *SearchTool {
	return &SearchTool{
		DefaultTool: tools.NewDefaultTool(
			SearchToolName,
			"Search the Standard Korean Dictionary",
			"Search the Standard Korean Dictionary (표준국어대사전). Returns the API response body unmodified, "+
				"XML by default or JSON when req_type is json. Set advanced to \"y\" to use target, method, type1, "+
				"type2, pos, cat, multimedia, letter_s/letter_e and update_s/update_e.",
			searchSchema(),
		),
		client: client,
		apiKey: apiKey,
	}
}

// Call executes the search tool with the given arguments.
func (t *SearchTool) Call(ctx context.Context, args json.RawMessage) ([]byte, error) {
	var parsed searchArgs
	if err := decodeArgs(args, &parsed); err != nil {
		return nil, tools.NewArgumentError(t.Name(), err)
	}

	req, err := parsed.toRequest(t.apiKey)
	if err != nil {
		return nil, err
	}

	return t.client.Search(ctx, req)
}

// DetailTool wraps view.do.
type DetailTool struct {
	*tools.DefaultTool
	client Dictionary
	apiKey string
}

// NewDetailTool creates the detail tool.
func NewDetailTool(client Dictionary, apiKey string) *DetailTool {
	return &DetailTool{
		DefaultTool: tools.NewDefaultTool(
			DetailToolName,
			"Look up a Standard Korean Dictionary entry",
			"Get the full entry for a headword or target_code from the Standard Korean Dictionary (표준국어대사전). "+
				"Returns the API response body unmodified, XML by default or JSON when req_type is json.",
			detailSchema(),
		),
		client: client,
		apiKey: apiKey,
	}
}

// Call executes the detail tool with the given arguments.
func (t *DetailTool) Call(ctx context.Context, args json.RawMessage) ([]byte, error) {
	var parsed detailArgs
	if err := decodeArgs(args, &parsed); err != nil {
		return nil, tools.NewArgumentError(t.Name(), err)
	}

	return t.client.Detail(ctx, parsed.toRequest(t.apiKey))
}

// Register adds both dictionary tools to registry.
func Register(registry *tools.Registry, client Dictionary, apiKey string) {
	registry.Register(NewSearchTool(client, apiKey))
	registry.Register(NewDetailTool(client, apiKey))
}
