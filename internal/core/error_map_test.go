package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/toolhub/ynabhub/internal/tools"
)

func TestMapErrorCommonCases(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback int
		wantCode string
		wantHTTP int
		wantRPC  int
	}{
		{name: "nil", err: nil, fallback: 500, wantCode: "internal_error", wantHTTP: 500, wantRPC: RPCInternalError},
		{name: "unknown tool", err: fmt.Errorf("%w: nope", tools.ErrUnknownTool), fallback: 500, wantCode: "unknown_tool", wantHTTP: 404, wantRPC: RPCInvalidParams},
		{name: "input error", err: &tools.InputError{Tool: "t", Issues: []tools.FieldIssue{{Field: "budget_id", Reason: "is required"}}}, fallback: 500, wantCode: "invalid_arguments", wantHTTP: 400, wantRPC: RPCInvalidParams},
		{name: "allowlist", err: NewPolicy("other", false).CheckTool("x", true), fallback: 500, wantCode: "tool_not_allowed", wantHTTP: 403, wantRPC: RPCToolDenied},
		{name: "read only", err: NewPolicy("", true).CheckTool("x", false), fallback: 500, wantCode: "read_only", wantHTTP: 403, wantRPC: RPCToolDenied},
		{name: "invalid json body", err: errors.New("invalid JSON: unexpected EOF"), fallback: 500, wantCode: "invalid_request_schema", wantHTTP: 400, wantRPC: RPCInvalidRequest},
		{name: "generic 4xx", err: errors.New("limit must be positive"), fallback: 400, wantCode: "bad_request", wantHTTP: 400, wantRPC: RPCInvalidRequest},
		{name: "generic 5xx", err: errors.New("db down"), fallback: 500, wantCode: "internal_error", wantHTTP: 500, wantRPC: RPCInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err, tt.fallback)
			if got.Code != tt.wantCode {
				t.Fatalf("want code %q, got %q", tt.wantCode, got.Code)
			}
			if got.HTTPStatus != tt.wantHTTP {
				t.Fatalf("want status %d, got %d", tt.wantHTTP, got.HTTPStatus)
			}
			if got.RPCCode != tt.wantRPC {
				t.Fatalf("want rpc code %d, got %d", tt.wantRPC, got.RPCCode)
			}
		})
	}
}

func TestMapErrorWrappedInputError(t *testing.T) {
	inner := &tools.InputError{Tool: "t"}
	got := MapError(fmt.Errorf("decode: %w", inner), 500)
	if got.HTTPStatus != 400 {
		t.Fatalf("want 400 for wrapped input error, got %d", got.HTTPStatus)
	}
}
