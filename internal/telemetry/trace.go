package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const ctxKeyTraceID ctxKey = "trace_id"

// WithTraceID returns ctx carrying id. An empty id gets a fresh uuid.
func WithTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, ctxKeyTraceID, id)
}

func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyTraceID).(string)
	return id
}
