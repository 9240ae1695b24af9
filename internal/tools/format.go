package tools

import (
	"context"
	"log/slog"
	"strings"

	"github.com/toolhub/ynabhub/internal/telemetry"
	"github.com/toolhub/ynabhub/internal/ynab"
)

const (
	errorPrefix    = "YNAB API Error: "
	unknownMessage = "An unknown error occurred"
)

// FormatError turns any failure into the single user-facing error block and
// logs the diagnostic detail under toolName. It accepts a nil logger and a
// nil err.
func FormatError(ctx context.Context, logger *slog.Logger, err error, toolName string) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	kind := ynab.KindUnknown
	msg := ""
	attrs := []any{"tool", toolName, "trace_id", telemetry.TraceID(ctx)}

	if ye, ok := ynab.AsError(err); ok {
		kind = ye.Kind
		msg = ye.Message
		attrs = append(attrs, "kind", string(ye.Kind))
		if ye.Status != 0 {
			attrs = append(attrs, "status", ye.Status)
		}
		if len(ye.Issues) > 0 {
			attrs = append(attrs, "issues", ye.Issues)
		}
		if ye.Original != nil {
			switch ye.Kind {
			case ynab.KindValidation, ynab.KindParse:
				attrs = append(attrs, "raw", payload(ye.Original))
			default:
				attrs = append(attrs, "cause", payload(ye.Original))
			}
		}
	} else if err != nil {
		msg = err.Error()
		attrs = append(attrs, "kind", string(kind), "err", msg)
	}

	if strings.TrimSpace(msg) == "" {
		msg = unknownMessage
	}
	if logger != nil {
		logger.ErrorContext(ctx, "ynab tool failed", attrs...)
	}

	text := msg
	if !strings.HasPrefix(text, errorPrefix) {
		text = errorPrefix + text
	}
	r := textResult(text)
	r.IsError = true
	r.kind = string(kind)
	return r
}

func payload(v any) any {
	switch p := v.(type) {
	case error:
		return p.Error()
	case []byte:
		return string(p)
	default:
		return p
	}
}
