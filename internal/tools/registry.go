package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/toolhub/ynabhub/internal/telemetry"
)

var ErrUnknownTool = errors.New("unknown tool")

// Policy decides whether a tool may be listed and called.
type Policy interface {
	CheckTool(name string, readOnly bool) error
}

// CallRecord describes one finished call. Err is set only for rejected
// arguments, in which case Result is empty.
type CallRecord struct {
	TraceID  string
	ToolName string
	Args     json.RawMessage
	Result   Result
	Err      error
	Duration time.Duration
}

// Status is "ok" or "error".
func (c CallRecord) Status() string {
	if c.Err != nil || c.Result.IsError {
		return "error"
	}
	return "ok"
}

// ErrorKind is "invalid_arguments" for rejected arguments and otherwise the
// result's error kind.
func (c CallRecord) ErrorKind() string {
	if c.Err != nil {
		return "invalid_arguments"
	}
	return c.Result.ErrorKind()
}

type Observer interface {
	ObserveToolCall(ctx context.Context, rec CallRecord)
}

type handler func(ctx context.Context, raw json.RawMessage) (Result, error)

func bind[T any](name string, fn func(context.Context, T) Result) handler {
	return func(ctx context.Context, raw json.RawMessage) (Result, error) {
		in, err := decodeInput[T](name, raw)
		if err != nil {
			return Result{}, err
		}
		return fn(ctx, *in), nil
	}
}

// Registry routes calls by tool name to a Toolset.
type Registry struct {
	tools     []Tool
	byName    map[string]Tool
	handlers  map[string]handler
	policy    Policy
	observers []Observer
	logger    *slog.Logger
}

type RegistryOption func(*Registry)

func WithPolicy(p Policy) RegistryOption {
	return func(r *Registry) {
		r.policy = p
	}
}

func WithObserver(o Observer) RegistryOption {
	return func(r *Registry) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRegistry(s *Toolset, opts ...RegistryOption) *Registry {
	r := &Registry{
		tools:  Definitions(),
		byName: make(map[string]Tool),
		handlers: map[string]handler{
			ToolListBudgets:       bind(ToolListBudgets, s.ListBudgets),
			ToolListAccounts:      bind(ToolListAccounts, s.ListAccounts),
			ToolListTransactions:  bind(ToolListTransactions, s.ListTransactions),
			ToolGetAccountBalance: bind(ToolGetAccountBalance, s.GetAccountBalance),
			ToolListCategories:    bind(ToolListCategories, s.ListCategories),
			ToolGetBudgetSummary:  bind(ToolGetBudgetSummary, s.GetBudgetSummary),
			ToolGetCategoryInfo:   bind(ToolGetCategoryInfo, s.GetCategoryInfo),
			ToolCreateTransaction: bind(ToolCreateTransaction, s.CreateTransaction),
		},
		logger: s.logger,
	}
	for _, t := range r.tools {
		r.byName[t.Name] = t
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns the tools the policy allows, in definition order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		if r.policy != nil && r.policy.CheckTool(t.Name, t.ReadOnly) != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Call runs the named tool. The error return is reserved for calls that
// never reached a tool: an unknown name (ErrUnknownTool), a policy denial,
// or arguments rejected as *InputError. Upstream failures come back as an
// IsError Result.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	tool, ok := r.byName[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if r.policy != nil {
		if err := r.policy.CheckTool(name, tool.ReadOnly); err != nil {
			telemetry.IncToolCall(name, "denied")
			r.logger.WarnContext(ctx, "tool call denied",
				"trace_id", telemetry.TraceID(ctx),
				"tool_name", name,
				"err", err)
			return Result{}, err
		}
	}

	start := time.Now()
	res, err := r.handlers[name](ctx, args)
	rec := CallRecord{
		TraceID:  telemetry.TraceID(ctx),
		ToolName: name,
		Args:     args,
		Result:   res,
		Err:      err,
		Duration: time.Since(start),
	}

	telemetry.IncToolCall(name, rec.Status())
	telemetry.ObserveToolDuration(name, rec.Duration)
	r.logger.InfoContext(ctx, "tool call",
		"trace_id", rec.TraceID,
		"tool_name", name,
		"status", rec.Status(),
		"error_kind", rec.ErrorKind(),
		"duration", rec.Duration)

	for _, o := range r.observers {
		o.ObserveToolCall(ctx, rec)
	}
	return res, err
}
