package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/toolhub/ynabhub/internal/events"
	"github.com/toolhub/ynabhub/internal/ynab"
)

// API is the upstream call primitive; *ynab.Client satisfies it.
type API interface {
	Do(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error)
}

// Publisher receives an event after each successful create.
type Publisher interface {
	PublishTransactionCreated(ctx context.Context, evt events.TransactionCreated) error
}

// Toolset holds the YNAB tool implementations. Its methods never return Go
// errors: every outcome is a Result.
type Toolset struct {
	api       API
	logger    *slog.Logger
	publisher Publisher
}

type ToolsetOption func(*Toolset)

func WithPublisher(p Publisher) ToolsetOption {
	return func(s *Toolset) {
		s.publisher = p
	}
}

func NewToolset(api API, logger *slog.Logger, opts ...ToolsetOption) *Toolset {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Toolset{api: api, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const emptyResponseMessage = "Received empty response from YNAB API."

type request struct {
	tool     string
	method   string
	endpoint string
	body     any

	// emptyMessage replaces emptyResponseMessage when set.
	emptyMessage string
}

// execute runs one upstream call, decodes the envelope T and hands it to
// render. Every failure along the way goes through FormatError.
func execute[T any](ctx context.Context, s *Toolset, req request, render func(*T) (Result, error)) Result {
	raw, err := s.api.Do(ctx, req.method, req.endpoint, req.body)
	if err != nil {
		return FormatError(ctx, s.logger, err, req.tool)
	}
	if isEmptyBody(raw) {
		msg := req.emptyMessage
		if msg == "" {
			msg = emptyResponseMessage
		}
		return FormatError(ctx, s.logger, ynab.UnknownError(msg), req.tool)
	}

	env, err := ynab.Decode[T](raw)
	if err != nil {
		return FormatError(ctx, s.logger, err, req.tool)
	}

	res, err := render(env)
	if err != nil {
		return FormatError(ctx, s.logger, err, req.tool)
	}
	return res
}

func isEmptyBody(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}
