package tools_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/toolhub/ynabhub/internal/events"
)

type fakeAPI struct {
	mu       sync.Mutex
	raw      string
	err      error
	calls    int
	method   string
	endpoint string
	body     any
}

func (f *fakeAPI) Do(_ context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.method = method
	f.endpoint = endpoint
	f.body = body
	if f.err != nil {
		return nil, f.err
	}
	if f.raw == "" {
		return nil, nil
	}
	return json.RawMessage(f.raw), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []events.TransactionCreated
}

func (p *fakePublisher) PublishTransactionCreated(_ context.Context, evt events.TransactionCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }
