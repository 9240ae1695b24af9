package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/toolhub/ynabhub/internal/db"
	"github.com/toolhub/ynabhub/internal/tools"
)

type memJournal struct {
	calls []*db.ToolCall
	err   error
}

func (m *memJournal) InsertToolCall(_ context.Context, tc *db.ToolCall) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, tc)
	return nil
}

func resultFor(text string, isError bool) tools.Result {
	return tools.Result{Content: []tools.Content{{Type: "text", Text: text}}, IsError: isError}
}

func TestObserveToolCall_RecordsEntry(t *testing.T) {
	j := &memJournal{}
	audit := NewAuditService(j, nil)
	fixed := time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC)
	audit.now = func() time.Time { return fixed }

	ctx, id := WithToolCallID(context.Background(), "")
	args := json.RawMessage(`{"budget_id":"b1"}`)
	audit.ObserveToolCall(ctx, tools.CallRecord{
		TraceID:  "trace-1",
		ToolName: "mcp_ynab_list_accounts",
		Args:     args,
		Result:   resultFor("No open accounts found for this budget.", false),
		Duration: 1500 * time.Millisecond,
	})

	if len(j.calls) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(j.calls))
	}
	tc := j.calls[0]
	if tc.ToolCallID != id {
		t.Fatalf("ToolCallID = %q, want %q", tc.ToolCallID, id)
	}
	if tc.Status != "ok" || tc.ErrorKind != "" {
		t.Fatalf("status/kind = %q/%q, want ok/empty", tc.Status, tc.ErrorKind)
	}
	if tc.DurationMS != 1500 {
		t.Fatalf("DurationMS = %d, want 1500", tc.DurationMS)
	}
	if !tc.CreatedAt.Equal(fixed) {
		t.Fatalf("CreatedAt = %v, want %v", tc.CreatedAt, fixed)
	}
	if tc.EvidenceHash != EvidenceHash(args, "No open accounts found for this budget.") {
		t.Fatal("evidence hash does not match EvidenceHash()")
	}
	if len(tc.EvidenceHash) != 64 {
		t.Fatalf("evidence hash length = %d, want 64", len(tc.EvidenceHash))
	}
}

func TestObserveToolCall_RejectedArguments(t *testing.T) {
	j := &memJournal{}
	audit := NewAuditService(j, nil)

	audit.ObserveToolCall(context.Background(), tools.CallRecord{
		ToolName: "mcp_ynab_list_accounts",
		Args:     json.RawMessage(`not json`),
		Err:      &tools.InputError{Tool: "mcp_ynab_list_accounts", Issues: []tools.FieldIssue{{Field: "budget_id", Reason: "is required"}}},
	})

	tc := j.calls[0]
	if tc.Status != "error" || tc.ErrorKind != "invalid_arguments" {
		t.Fatalf("status/kind = %q/%q, want error/invalid_arguments", tc.Status, tc.ErrorKind)
	}
	if !strings.Contains(tc.Message, "budget_id: is required") {
		t.Fatalf("message = %q", tc.Message)
	}
	if !json.Valid(tc.Request) {
		t.Fatalf("request stored as invalid JSON: %s", tc.Request)
	}
	if tc.ToolCallID == "" {
		t.Fatal("expected generated tool call id")
	}
}

func TestObserveToolCall_JournalFailureIsLoggedNotRaised(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	audit := NewAuditService(&memJournal{err: errors.New("disk full")}, logger)

	audit.ObserveToolCall(context.Background(), tools.CallRecord{
		ToolName: "mcp_ynab_list_budgets",
		Result:   resultFor("No budgets found.", false),
	})

	if !strings.Contains(buf.String(), "journal write failed") || !strings.Contains(buf.String(), "disk full") {
		t.Fatalf("expected failure log, got %q", buf.String())
	}
}

func TestEvidenceHashDistinguishesInputs(t *testing.T) {
	a := EvidenceHash(json.RawMessage(`{"budget_id":"a"}`), "x")
	b := EvidenceHash(json.RawMessage(`{"budget_id":"b"}`), "x")
	c := EvidenceHash(json.RawMessage(`{"budget_id":"a"}`), "y")
	if a == b || a == c {
		t.Fatal("expected distinct hashes")
	}
	if EvidenceHash(nil, "x") != EvidenceHash(json.RawMessage("null"), "x") {
		t.Fatal("absent args should hash like null")
	}
}

func TestAuditWithSQLiteJournal(t *testing.T) {
	database, err := db.Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	defer database.Close()

	audit := NewAuditService(database, nil)
	audit.ObserveToolCall(context.Background(), tools.CallRecord{
		TraceID:  "trace-sqlite",
		ToolName: "mcp_ynab_get_account_balance",
		Args:     json.RawMessage(`{"budget_id":"b","account_id":"a"}`),
		Result:   resultFor("Account with ID a not found.", true),
	})

	got, err := database.ListToolCalls(context.Background(), db.ToolCallFilter{Status: "error"}, 10)
	if err != nil {
		t.Fatalf("ListToolCalls: %v", err)
	}
	if len(got) != 1 || got[0].TraceID != "trace-sqlite" {
		t.Fatalf("unexpected journal contents: %+v", got)
	}
}
