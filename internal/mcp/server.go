package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/toolhub/ynabhub/internal/core"
	"github.com/toolhub/ynabhub/internal/telemetry"
	"github.com/toolhub/ynabhub/internal/tools"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "ynabhub"

	maxLineBytes = 1024 * 1024
)

// ToolCaller is the tool surface the server exposes. *tools.Registry
// satisfies it.
type ToolCaller interface {
	List() []tools.Tool
	Call(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

// Server speaks newline-delimited JSON-RPC 2.0. The same loop serves stdio
// and every TCP connection.
type Server struct {
	tools   ToolCaller
	addr    string
	version string
	logger  *slog.Logger

	ln     net.Listener
	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
}

func NewServer(addr string, caller ToolCaller, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		tools:   caller,
		addr:    addr,
		version: version,
		logger:  logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification reports a request without an id; those get no response.
func (r jsonRPCRequest) isNotification() bool {
	return len(r.ID) == 0
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ListenAndServe accepts TCP connections on the configured address until
// Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("mcp server starting", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			s.logger.Error("mcp accept error", "err", err)
			continue
		}
		go s.handleConn(conn)
	}
}

// Addr is the bound listener address, or nil before ListenAndServe.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting and closes open connections.
func (s *Server) Shutdown(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

func (s *Server) handleConn(conn net.Conn) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	if err := s.Serve(context.Background(), conn, conn); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("mcp connection ended", "remote", conn.RemoteAddr().String(), "err", err)
	}
}

// Serve handles requests from r until EOF or ctx is done. Each line is one
// message and each response is written as one line to w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if resp, ok := s.handleLine(ctx, line); ok {
				if err := writeResponse(w, resp); err != nil {
					return err
				}
			}
		}
	}
}

func (s *Server) handleLine(ctx context.Context, line []byte) (jsonRPCResponse, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return jsonRPCResponse{}, false
	}

	var req jsonRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return jsonRPCResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: core.RPCParseError, Message: "parse error"},
		}, true
	}

	ctx = telemetry.WithTraceID(ctx, "")
	s.logger.DebugContext(ctx, "mcp request",
		"trace_id", telemetry.TraceID(ctx),
		"method", req.Method,
		"notification", req.isNotification())

	if req.isNotification() {
		return jsonRPCResponse{}, false
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: core.RPCInvalidRequest, Message: "invalid request"},
		}, true
	}
	return s.dispatch(ctx, req), true
}

func writeResponse(w io.Writer, resp jsonRPCResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      resp.ID,
			Error:   &rpcError{Code: core.RPCInternalError, Message: "cannot encode response"},
		})
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func (s *Server) dispatch(ctx context.Context, req jsonRPCRequest) jsonRPCResponse {
	base := jsonRPCResponse{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		base.Result = map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{"listChanged": false}},
			"serverInfo":      map[string]any{"name": ServerName, "version": s.version},
		}
		return base

	case "ping":
		base.Result = map[string]any{}
		return base

	case "tools/list":
		base.Result = map[string]any{"tools": s.tools.List()}
		return base

	case "tools/call":
		return s.handleToolCall(ctx, req, base)

	default:
		base.Error = &rpcError{Code: core.RPCMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
		return base
	}
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) handleToolCall(ctx context.Context, req jsonRPCRequest, base jsonRPCResponse) jsonRPCResponse {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		base.Error = &rpcError{Code: core.RPCInvalidParams, Message: "invalid params: " + err.Error()}
		return base
	}
	if params.Name == "" {
		base.Error = &rpcError{Code: core.RPCInvalidParams, Message: "invalid params: name is required"}
		return base
	}

	res, err := s.tools.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		info := core.MapError(err, http.StatusInternalServerError)
		base.Error = &rpcError{Code: info.RPCCode, Message: info.Message}
		return base
	}
	base.Result = res
	return base
}
