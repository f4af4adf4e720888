package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"

	"stdict-mcp/internal/jsonrpc"
)

// maxLineBytes bounds a single stdin message.
const maxLineBytes = 4 << 20

// stdioConn serializes writes and tracks in-flight requests for cancellation.
type stdioConn struct {
	out   io.Writer
	outMu sync.Mutex

	mu       sync.Mutex
	inflight map[string]*stdioCall
}

type stdioCall struct {
	cancel    context.CancelFunc
	cancelled bool
}

// ServeStdio reads newline-delimited JSON-RPC messages from in and writes
// responses to out until in is exhausted or ctx is done. Requests run
// concurrently; a notifications/cancelled for an in-flight request cancels
// its context and suppresses its response. ServeStdio waits for in-flight
// requests before returning.
func (h *Handler) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	conn := &stdioConn{out: out, inflight: make(map[string]*stdioCall)}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- append([]byte(nil), line...):
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	h.logger.Info().Msg("Serving MCP on stdio")

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				wg.Wait()
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			h.handleLine(ctx, conn, line, &wg)
		}
	}
}

func (h *Handler) handleLine(ctx context.Context, conn *stdioConn, line []byte, wg *sync.WaitGroup) {
	msg, err := jsonrpc.ParseMessage(line)
	if err != nil {
		rpcErr, ok := err.(*jsonrpc.Error)
		if !ok {
			rpcErr = jsonrpc.NewError(jsonrpc.ParseError, err.Error(), nil)
		}
		h.logger.Warn().Err(err).Msg("Invalid message on stdin")
		conn.write(h, jsonrpc.NewErrorResponse(nil, rpcErr))
		return
	}

	switch m := msg.(type) {
	case *jsonrpc.Notification:
		if m.Method == NotifyCancelled {
			h.cancelRequest(conn, m.Params)
			return
		}
		h.HandleNotification(ctx, m)

	case *jsonrpc.Response:
		h.logger.Debug().RawJSON("id", m.ID).Msg("Ignoring client response")

	case *jsonrpc.Request:
		key := jsonrpc.IDKey(m.ID)
		reqCtx, cancel := context.WithCancel(ctx)
		call := &stdioCall{cancel: cancel}

		conn.mu.Lock()
		conn.inflight[key] = call
		conn.mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer cancel()

			resp := h.HandleRequest(reqCtx, m)

			conn.mu.Lock()
			if conn.inflight[key] == call {
				delete(conn.inflight, key)
			}
			suppressed := call.cancelled
			conn.mu.Unlock()

			if suppressed {
				h.logger.Debug().RawJSON("id", m.ID).Msg("Dropping response to cancelled request")
				return
			}
			conn.write(h, resp)
		}()
	}
}

func (h *Handler) cancelRequest(conn *stdioConn, raw json.RawMessage) {
	var params cancelledParams
	if err := json.Unmarshal(raw, &params); err != nil || len(params.RequestID) == 0 {
		return
	}

	conn.mu.Lock()
	call, ok := conn.inflight[jsonrpc.IDKey(params.RequestID)]
	if ok {
		call.cancelled = true
	}
	conn.mu.Unlock()

	if ok {
		h.logger.Info().
			RawJSON("id", params.RequestID).
			Str("reason", params.Reason).
			Msg("Request cancelled")
		call.cancel()
	}
}

func (c *stdioConn) write(h *Handler, resp *jsonrpc.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
		return
	}

	c.outMu.Lock()
	defer c.outMu.Unlock()
	if _, err := c.out.Write(append(data, '\n')); err != nil {
		h.logger.Error().Err(err).Msg("Failed to write response")
	}
}
