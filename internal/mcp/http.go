package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"stdict-mcp/internal/jsonrpc"
	"stdict-mcp/internal/session"
)

// maxRequestBytes bounds a single POSTed JSON-RPC message.
const maxRequestBytes = 4 << 20

// ServeHTTP implements the streamable HTTP transport: POST carries one
// JSON-RPC message, DELETE ends the caller's session. The session
// middleware must run first so a valid session is in the request context.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		writeRPCError(w, r, http.StatusMethodNotAllowed, nil, jsonrpc.NewError(jsonrpc.InvalidRequest, "Method not allowed", nil))
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		status := http.StatusBadRequest
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeRPCError(w, r, status, nil, jsonrpc.NewError(jsonrpc.InvalidRequest, "Could not read request body", nil))
		return
	}

	msg, err := jsonrpc.ParseMessage(body)
	if err != nil {
		rpcErr, ok := err.(*jsonrpc.Error)
		if !ok {
			rpcErr = jsonrpc.NewError(jsonrpc.ParseError, err.Error(), nil)
		}
		writeRPCError(w, r, http.StatusBadRequest, nil, rpcErr)
		return
	}

	_, hasSession := session.FromContext(r.Context())

	if v := r.Header.Get(ProtocolVersionHeader); v != "" && !isSupportedVersion(v) {
		writeRPCError(w, r, http.StatusBadRequest, nil, jsonrpc.NewError(jsonrpc.InvalidRequest, "Unsupported protocol version: "+v, nil))
		return
	}

	switch m := msg.(type) {
	case *jsonrpc.Notification:
		if !h.checkSession(w, r, hasSession, nil) {
			return
		}
		h.HandleNotification(r.Context(), m)
		w.WriteHeader(http.StatusAccepted)

	case *jsonrpc.Response:
		// Server-initiated requests are never sent, so client responses are
		// acknowledged and dropped.
		if !h.checkSession(w, r, hasSession, nil) {
			return
		}
		w.WriteHeader(http.StatusAccepted)

	case *jsonrpc.Request:
		if m.Method == MethodInitialize {
			h.handleInitialize(w, r, m)
			return
		}
		if !h.checkSession(w, r, hasSession, m.ID) {
			return
		}
		h.writeResponse(w, r, h.HandleRequest(r.Context(), m))
	}
}

func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request, req *jsonrpc.Request) {
	resp := h.HandleRequest(r.Context(), req)

	if resp.Error == nil && h.sessions != nil {
		result := resp.Result.(InitializeResult)
		client := clientInfo(req.Params)
		sess, err := h.sessions.CreateSession(r.Context(), result.ProtocolVersion, session.ClientInfo{
			Name:       client.Name,
			Version:    client.Version,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to create session")
			h.writeResponse(w, r, jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewError(jsonrpc.InternalError, "Failed to create session", nil)))
			return
		}
		w.Header().Set(session.HeaderName, sess.ID)
	}

	h.writeResponse(w, r, resp)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if h.sessions == nil || !ok {
		writeRPCError(w, r, http.StatusBadRequest, nil, jsonrpc.NewError(jsonrpc.InvalidRequest, "Missing session ID header", nil))
		return
	}

	if err := h.sessions.DeleteSession(r.Context(), sess.ID); err != nil {
		writeRPCError(w, r, http.StatusNotFound, nil, jsonrpc.NewError(jsonrpc.InvalidRequest, err.Error(), nil))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkSession writes a 400 and returns false when a session is required
// but absent.
func (h *Handler) checkSession(w http.ResponseWriter, r *http.Request, hasSession bool, id jsonrpc.ID) bool {
	if !h.config.RequireSession || hasSession {
		return true
	}
	writeRPCError(w, r, http.StatusBadRequest, id, jsonrpc.NewError(jsonrpc.InvalidRequest,
		fmt.Sprintf("Missing %s header; send initialize first", session.HeaderName), nil))
	return false
}

// writeResponse sends resp as JSON, or as a single SSE message event when
// the client accepts only text/event-stream.
func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, resp *jsonrpc.Response) {
	if !wantsEventStream(r.Header.Get("Accept")) {
		render.JSON(w, r, resp)
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func writeRPCError(w http.ResponseWriter, r *http.Request, status int, id jsonrpc.ID, rpcErr *jsonrpc.Error) {
	render.Status(r, status)
	render.JSON(w, r, jsonrpc.NewErrorResponse(id, rpcErr))
}

// wantsEventStream reports whether accept lists text/event-stream and no
// JSON-compatible type.
func wantsEventStream(accept string) bool {
	sse, jsonOK := false, false
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case "text/event-stream":
			sse = true
		case "application/json", "application/*", "*/*":
			jsonOK = true
		}
	}
	return sse && !jsonOK
}

// clientInfo extracts clientInfo from initialize params that already
// decoded successfully.
func clientInfo(raw json.RawMessage) Implementation {
	var p initializeParams
	json.Unmarshal(raw, &p)
	return p.ClientInfo
}
