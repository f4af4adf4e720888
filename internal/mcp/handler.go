package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"stdict-mcp/internal/jsonrpc"
	"stdict-mcp/internal/session"
	"stdict-mcp/internal/tools"
)

// Tools is the tool dispatcher served by the handler. *tools.Registry and
// the telemetry wrapper both satisfy it.
type Tools interface {
	Definitions() []tools.Definition
	Call(ctx context.Context, name string, args json.RawMessage) ([]byte, error)
}

// Config contains configuration for the MCP handler
type Config struct {
	Name         string
	Version      string
	Instructions string

	// RequireSession rejects HTTP requests other than initialize that do not
	// carry a valid Mcp-Session-Id.
	RequireSession bool
}

// Handler dispatches MCP requests to tools.
type Handler struct {
	tools    Tools
	sessions session.Manager
	config   Config
	logger   zerolog.Logger
}

// NewHandler creates a handler. sessions may be nil, in which case the HTTP
// transport issues no session IDs and RequireSession is ignored.
func NewHandler(toolset Tools, sessions session.Manager, config Config, logger zerolog.Logger) *Handler {
	if config.Name == "" {
		config.Name = "stdict"
	}
	if config.Instructions == "" {
		config.Instructions = defaultInstructions
	}
	if sessions == nil {
		config.RequireSession = false
	}
	return &Handler{
		tools:    toolset,
		sessions: sessions,
		config:   config,
		logger:   logger.With().Str("component", "mcp_handler").Logger(),
	}
}

// HandleRequest executes a single request and returns its response.
func (h *Handler) HandleRequest(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	result, rpcErr := h.dispatch(ctx, req)
	if rpcErr != nil {
		return jsonrpc.NewErrorResponse(req.ID, rpcErr)
	}
	return jsonrpc.NewResult(req.ID, result)
}

// HandleNotification processes a notification other than cancellation,
// which the transports handle themselves.
func (h *Handler) HandleNotification(ctx context.Context, n *jsonrpc.Notification) {
	switch n.Method {
	case NotifyInitialized:
		h.logger.Debug().Msg("Client initialized")
	default:
		h.logger.Debug().Str("method", n.Method).Msg("Ignoring notification")
	}
}

func (h *Handler) dispatch(ctx context.Context, req *jsonrpc.Request) (any, *jsonrpc.Error) {
	switch req.Method {
	case MethodInitialize:
		return h.initialize(req.Params)
	case MethodPing:
		return struct{}{}, nil
	case MethodToolsList:
		return ListToolsResult{Tools: h.tools.Definitions()}, nil
	case MethodToolsCall:
		return h.callTool(ctx, req.Params)
	default:
		return nil, jsonrpc.NewError(jsonrpc.MethodNotFound, "Method not found: "+req.Method, nil)
	}
}

func (h *Handler) initialize(raw json.RawMessage) (any, *jsonrpc.Error) {
	var params initializeParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, jsonrpc.NewError(jsonrpc.InvalidParams, "Invalid initialize params: "+err.Error(), nil)
		}
	}

	version := negotiateVersion(params.ProtocolVersion)
	h.logger.Info().
		Str("client", params.ClientInfo.Name).
		Str("client_version", params.ClientInfo.Version).
		Str("requested_version", params.ProtocolVersion).
		Str("protocol_version", version).
		Msg("Initialize")

	return InitializeResult{
		ProtocolVersion: version,
		Capabilities:    serverCapabilities{Tools: toolsCapability{ListChanged: false}},
		ServerInfo: Implementation{
			Name:    h.config.Name,
			Title:   "Standard Korean Dictionary",
			Version: h.config.Version,
		},
		Instructions: h.config.Instructions,
	}, nil
}

// callTool maps dispatch failures to JSON-RPC errors and tool failures to
// results with isError set, so the model can read and correct them.
func (h *Handler) callTool(ctx context.Context, raw json.RawMessage) (any, *jsonrpc.Error) {
	var params callToolParams
	if err := json.Unmarshal(raw, &params); err != nil || params.Name == "" {
		return nil, jsonrpc.NewError(jsonrpc.InvalidParams, "Invalid tools/call params: a tool name is required", nil)
	}

	start := time.Now()
	body, err := h.tools.Call(ctx, params.Name, params.Arguments)
	duration := time.Since(start)

	if err != nil {
		var toolErr *tools.Error
		if errors.As(err, &toolErr) {
			h.logger.Debug().
				Str("tool", params.Name).
				Str("code", toolErr.Code).
				Msg("Tool call rejected")
			return nil, jsonrpc.NewError(jsonrpc.InvalidParams, toolErr.Message, map[string]string{"code": toolErr.Code})
		}

		result, detail := errorResult(err)
		h.logger.Info().
			Str("tool", params.Name).
			Str("outcome", detail.Type).
			Dur("duration", duration).
			Str("error", detail.Message).
			Msg("Tool call failed")
		return result, nil
	}

	h.logger.Info().
		Str("tool", params.Name).
		Str("outcome", "ok").
		Int("bytes", len(body)).
		Dur("duration", duration).
		Msg("Tool call")

	return &CallToolResult{Content: []Content{{Type: "text", Text: string(body)}}}, nil
}
