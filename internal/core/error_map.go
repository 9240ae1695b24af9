package core

import (
	"errors"
	"net/http"
	"strings"

	"github.com/toolhub/ynabhub/internal/tools"
)

// JSON-RPC error codes.
const (
	RPCParseError     = -32700
	RPCInvalidRequest = -32600
	RPCMethodNotFound = -32601
	RPCInvalidParams  = -32602
	RPCInternalError  = -32603
	RPCToolDenied     = -32001
)

type ErrorInfo struct {
	Code       string
	Message    string
	HTTPStatus int
	RPCCode    int
}

// MapError picks the transport-facing code and status for an error returned by
// Registry.Call or by request decoding. Upstream failures never reach it: the
// registry reports them as IsError results.
func MapError(err error, fallbackStatus int) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: "internal_error", Message: "internal server error", HTTPStatus: fallbackStatus, RPCCode: RPCInternalError}
	}

	msg := err.Error()

	if errors.Is(err, tools.ErrUnknownTool) {
		return ErrorInfo{Code: "unknown_tool", Message: msg, HTTPStatus: http.StatusNotFound, RPCCode: RPCInvalidParams}
	}

	var inErr *tools.InputError
	if errors.As(err, &inErr) {
		return ErrorInfo{Code: inErr.ErrorCode(), Message: msg, HTTPStatus: http.StatusBadRequest, RPCCode: RPCInvalidParams}
	}

	var pe *PolicyError
	if errors.As(err, &pe) {
		return ErrorInfo{Code: pe.ErrorCode(), Message: msg, HTTPStatus: http.StatusForbidden, RPCCode: RPCToolDenied}
	}

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "invalid json"), strings.Contains(lower, "request body must contain a single json object"):
		return ErrorInfo{Code: "invalid_request_schema", Message: msg, HTTPStatus: http.StatusBadRequest, RPCCode: RPCInvalidRequest}
	default:
		code := "internal_error"
		rpc := RPCInternalError
		if fallbackStatus >= 400 && fallbackStatus < 500 {
			code = "bad_request"
			rpc = RPCInvalidRequest
		}
		return ErrorInfo{Code: code, Message: msg, HTTPStatus: fallbackStatus, RPCCode: rpc}
	}
}
