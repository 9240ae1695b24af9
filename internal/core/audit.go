package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/toolhub/ynabhub/internal/db"
	"github.com/toolhub/ynabhub/internal/telemetry"
	"github.com/toolhub/ynabhub/internal/tools"
)

// Journal stores tool-call records. *db.DB satisfies it.
type Journal interface {
	InsertToolCall(ctx context.Context, tc *db.ToolCall) error
}

type ctxKey string

const ctxKeyToolCallID ctxKey = "tool_call_id"

// WithToolCallID fixes the journal id of the next call made with ctx. An
// empty id gets a fresh uuid.
func WithToolCallID(ctx context.Context, id string) (context.Context, string) {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, ctxKeyToolCallID, id), id
}

func toolCallID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyToolCallID).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

// AuditService journals every tool call with a SHA-256 evidence hash of the
// request and the result text. It is a tools.Observer.
type AuditService struct {
	journal Journal
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuditService wires the audit layer to its journal.
func NewAuditService(journal Journal, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{journal: journal, logger: logger, now: time.Now}
}

// EvidenceHash is the hex SHA-256 of the request JSON followed by the
// result text.
func EvidenceHash(args json.RawMessage, resultText string) string {
	sum := sha256.Sum256(append(append([]byte{}, normalizeArgs(args)...), resultText...))
	return hex.EncodeToString(sum[:])
}

func normalizeArgs(args json.RawMessage) json.RawMessage {
	if len(args) == 0 {
		return json.RawMessage("null")
	}
	return args
}

// ObserveToolCall records rec. A journal failure is logged and counted;
// it never reaches the caller.
func (a *AuditService) ObserveToolCall(ctx context.Context, rec tools.CallRecord) {
	message := rec.Result.Text()
	if rec.Err != nil {
		message = rec.Err.Error()
	}

	args := normalizeArgs(rec.Args)
	if !json.Valid(args) {
		b, _ := json.Marshal(string(args))
		args = b
	}

	tc := &db.ToolCall{
		ToolCallID:   toolCallID(ctx),
		TraceID:      rec.TraceID,
		ToolName:     rec.ToolName,
		Status:       rec.Status(),
		ErrorKind:    rec.ErrorKind(),
		Message:      message,
		Request:      args,
		EvidenceHash: EvidenceHash(rec.Args, message),
		DurationMS:   rec.Duration.Milliseconds(),
		CreatedAt:    a.now().UTC(),
	}
	if err := a.journal.InsertToolCall(ctx, tc); err != nil {
		telemetry.IncJournalWriteFailure()
		a.logger.ErrorContext(ctx, "journal write failed",
			"trace_id", rec.TraceID,
			"tool_name", rec.ToolName,
			"err", err)
	}
}
