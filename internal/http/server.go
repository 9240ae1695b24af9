package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/toolhub/ynabhub/internal/core"
	"github.com/toolhub/ynabhub/internal/db"
	"github.com/toolhub/ynabhub/internal/telemetry"
	"github.com/toolhub/ynabhub/internal/tools"
)

// ToolCaller runs tools by name. *tools.Registry satisfies it.
type ToolCaller interface {
	List() []tools.Tool
	Call(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

// JournalReader lists recorded tool calls. *db.DB satisfies it.
type JournalReader interface {
	ListToolCalls(ctx context.Context, f db.ToolCallFilter, limit int) ([]*db.ToolCall, error)
}

type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

const traceHeader = "X-Trace-Id"

type Server struct {
	tools   ToolCaller
	journal JournalReader
	build   BuildInfo
	srv     *http.Server
	logger  *slog.Logger
}

const maxRequestBodyBytes = 1 << 20

// NewServer wires the HTTP surface. journal may be nil when the journal is
// disabled.
func NewServer(addr string, caller ToolCaller, journal JournalReader, logger *slog.Logger, build BuildInfo) *Server {
	s := &Server{
		tools:   caller,
		journal: journal,
		build:   build,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /version", s.handleVersion)
	mux.Handle("GET /metrics", telemetry.Handler())
	mux.HandleFunc("GET /api/v1/tools", s.handleListTools)
	mux.HandleFunc("POST /api/v1/tools/{name}", s.handleCallTool)
	mux.HandleFunc("GET /api/v1/tool-calls", s.handleListToolCalls)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      withLogging(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("http server starting", "addr", s.srv.Addr)
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.build)
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.tools.List()})
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	ctx := telemetry.WithTraceID(r.Context(), strings.TrimSpace(r.Header.Get(traceHeader)))
	ctx, toolCallID := core.WithToolCallID(ctx, "")
	meta := core.ToolMeta{ToolCallID: toolCallID, TraceID: telemetry.TraceID(ctx)}
	w.Header().Set(traceHeader, meta.TraceID)

	var args json.RawMessage
	if err := decodeJSONBody(w, r, &args); err != nil && !errors.Is(err, io.EOF) {
		info := core.MapError(fmt.Errorf("invalid json: %w", err), http.StatusBadRequest)
		writeJSON(w, info.HTTPStatus, core.ToolEnvelope{
			Meta:  meta,
			Error: &core.ToolError{Code: info.Code, Message: info.Message},
		})
		return
	}

	res, err := s.tools.Call(ctx, name, args)
	if err != nil {
		info := core.MapError(err, http.StatusInternalServerError)
		writeJSON(w, info.HTTPStatus, core.ToolEnvelope{
			Meta:  meta,
			Error: &core.ToolError{Code: info.Code, Message: info.Message},
		})
		return
	}

	meta.EvidenceHash = core.EvidenceHash(args, res.Text())
	writeJSON(w, http.StatusOK, core.ToolEnvelope{
		OK:     !res.IsError,
		Meta:   meta,
		Result: res,
	})
}

func (s *Server) handleListToolCalls(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeErr(w, http.StatusServiceUnavailable, "tool-call journal is disabled (set DATABASE_URL)")
		return
	}

	filters, err := parseToolCallListFilters(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	calls, err := s.journal.ListToolCalls(r.Context(), filters, limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if calls == nil {
		calls = []*db.ToolCall{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tool_calls": calls})
}

func parseToolCallListFilters(r *http.Request) (db.ToolCallFilter, error) {
	q := r.URL.Query()
	filters := db.ToolCallFilter{
		Status:   strings.TrimSpace(q.Get("status")),
		ToolName: strings.TrimSpace(q.Get("tool_name")),
	}

	switch filters.Status {
	case "", "ok", "error":
	default:
		return filters, fmt.Errorf("invalid status %q: must be ok or error", filters.Status)
	}

	if v := strings.TrimSpace(q.Get("created_after")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, fmt.Errorf("invalid created_after: must be RFC3339")
		}
		filters.CreatedAfter = &t
	}
	if v := strings.TrimSpace(q.Get("created_before")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, fmt.Errorf("invalid created_before: must be RFC3339")
		}
		filters.CreatedBefore = &t
	}
	if filters.CreatedAfter != nil && filters.CreatedBefore != nil && !filters.CreatedAfter.Before(*filters.CreatedBefore) {
		return filters, fmt.Errorf("created_after must be before created_before")
	}
	return filters, nil
}

func parseLimit(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid limit %q: must be a positive integer", v)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
