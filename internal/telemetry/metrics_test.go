package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T) string {
	t.Helper()
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rr.Code)
	}
	b, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(b)
}

func TestToolCallCounters(t *testing.T) {
	defaultRegistry = newRegistry()

	IncToolCall("mcp_ynab_list_accounts", "ok")
	IncToolCall("mcp_ynab_list_accounts", "ok")
	IncToolCall("mcp_ynab_list_accounts", "error")

	if got := testutil.ToFloat64(defaultRegistry.toolCalls.WithLabelValues("mcp_ynab_list_accounts", "ok")); got != 2 {
		t.Fatalf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(defaultRegistry.toolCalls.WithLabelValues("mcp_ynab_list_accounts", "error")); got != 1 {
		t.Fatalf("error count = %v, want 1", got)
	}
}

func TestRenderLabelOrderingStable(t *testing.T) {
	defaultRegistry = newRegistry()

	IncUpstreamError("network", 0)
	IncUpstreamError("api", 404)
	IncToolCall("mcp_ynab_list_budgets", "ok")
	IncToolCall("mcp_ynab_list_budgets", "error")
	ObserveToolDuration("mcp_ynab_list_budgets", 300*time.Millisecond)
	IncJournalWriteFailure()
	IncEventPublishFailure()

	out := scrape(t)

	apiErr := strings.Index(out, `ynabhub_upstream_errors_total{kind="api",status="404"} 1`)
	netErr := strings.Index(out, `ynabhub_upstream_errors_total{kind="network",status="0"} 1`)
	if apiErr < 0 || netErr < 0 {
		t.Fatal("upstream error metrics missing from output")
	}
	if apiErr >= netErr {
		t.Fatal("upstream error labels are not rendered in stable lexical order")
	}

	callErr := strings.Index(out, `ynabhub_tool_calls_total{status="error",tool="mcp_ynab_list_budgets"} 1`)
	callOK := strings.Index(out, `ynabhub_tool_calls_total{status="ok",tool="mcp_ynab_list_budgets"} 1`)
	if callErr < 0 || callOK < 0 {
		t.Fatal("tool call metrics missing from output")
	}
	if callErr >= callOK {
		t.Fatal("tool call labels are not rendered in stable lexical order")
	}

	if !strings.Contains(out, `ynabhub_tool_duration_seconds_bucket{tool="mcp_ynab_list_budgets",le="0.5"} 1`) {
		t.Fatal("duration histogram bucket missing from output")
	}
	if !strings.Contains(out, "ynabhub_journal_write_failures_total 1") {
		t.Fatal("journal failure counter missing from output")
	}
	if !strings.Contains(out, "ynabhub_event_publish_failures_total 1") {
		t.Fatal("event failure counter missing from output")
	}
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc")
	if got := TraceID(ctx); got != "abc" {
		t.Fatalf("TraceID = %q, want abc", got)
	}
	if got := TraceID(WithTraceID(context.Background(), "")); got == "" {
		t.Fatal("expected a generated trace id")
	}
	if got := TraceID(context.Background()); got != "" {
		t.Fatalf("TraceID on bare context = %q, want empty", got)
	}
}

func TestNewTracingDisabledIsNoop(t *testing.T) {
	tr, err := NewTracing(context.Background(), TracingConfig{})
	if err != nil {
		t.Fatalf("NewTracing: %v", err)
	}
	_, span := tr.TracerProvider().Tracer("test").Start(context.Background(), "op")
	if span.SpanContext().IsValid() {
		t.Fatal("expected a no-op span when tracing is disabled")
	}
	span.End()
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
