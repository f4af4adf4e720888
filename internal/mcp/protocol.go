// Package mcp serves registered tools over the Model Context Protocol, on a
// streamable HTTP endpoint or on stdin/stdout.
package mcp

import (
	"encoding/json"

	"stdict-mcp/internal/tools"
)

// Protocol methods
const (
	MethodInitialize  = "initialize"
	MethodPing        = "ping"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"
	NotifyInitialized = "notifications/initialized"
	NotifyCancelled   = "notifications/cancelled"
)

// LatestVersion is offered when the client asks for an unsupported version.
const LatestVersion = "2025-06-18"

// ProtocolVersionHeader is sent by HTTP clients after initialization.
const ProtocolVersionHeader = "Mcp-Protocol-Version"

const defaultInstructions = "Use search to find Standard Korean Dictionary (표준국어대사전) entries for a word, then detail " +
	"with method target_code and the entry's target_code to read the full entry. Responses are the dictionary " +
	"API's XML or JSON, passed through unchanged."

var supportedVersions = []string{"2024-11-05", "2025-03-26", LatestVersion}

// negotiateVersion echoes the client's version when supported and offers the
// latest otherwise.
func negotiateVersion(requested string) string {
	for _, v := range supportedVersions {
		if v == requested {
			return v
		}
	}
	return LatestVersion
}

func isSupportedVersion(v string) bool {
	for _, s := range supportedVersions {
		if s == v {
			return true
		}
	}
	return false
}

// Implementation names a client or server.
type Implementation struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version"`
}

type initializeParams struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities"`
	ClientInfo      Implementation  `json:"clientInfo"`
}

type toolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

type serverCapabilities struct {
	Tools toolsCapability `json:"tools"`
}

// InitializeResult is the response to initialize.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

// ListToolsResult is the response to tools/list.
type ListToolsResult struct {
	Tools []tools.Definition `json:"tools"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Content is a single content block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult is the response to tools/call.
type CallToolResult struct {
	Content           []Content `json:"content"`
	StructuredContent any       `json:"structuredContent,omitempty"`
	IsError           bool      `json:"isError,omitempty"`
}

type cancelledParams struct {
	RequestID json.RawMessage `json:"requestId"`
	Reason    string          `json:"reason,omitempty"`
}
