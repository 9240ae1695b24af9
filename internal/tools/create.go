package tools

import (
	"context"
	"net/http"

	"github.com/toolhub/ynabhub/internal/events"
	"github.com/toolhub/ynabhub/internal/telemetry"
	"github.com/toolhub/ynabhub/internal/ynab"
)

// CreateTransaction posts a single transaction. A success is announced to
// the publisher, if any; a publish failure is logged and does not change the
// result.
func (s *Toolset) CreateTransaction(ctx context.Context, in CreateTransactionInput) Result {
	var amount int64
	if in.Amount != nil {
		amount = *in.Amount
	}
	body := ynab.SaveTransactionRequest{Transaction: ynab.NewTransaction{
		AccountID:  in.AccountID,
		Date:       in.Date,
		Amount:     amount,
		PayeeName:  in.PayeeName,
		CategoryID: in.CategoryID,
		Memo:       in.Memo,
		Cleared:    in.Cleared,
		Approved:   in.Approved,
	}}

	req := request{
		tool:         ToolCreateTransaction,
		method:       http.MethodPost,
		endpoint:     ynab.CreateTransactionPath(in.BudgetID),
		body:         body,
		emptyMessage: "Received empty response from YNAB API after creating transaction.",
	}
	return execute(ctx, s, req, func(env *ynab.SaveTransactionResponse) (Result, error) {
		id, ok := env.Data.CreatedID()
		if !ok {
			return Result{}, ynab.ParseError("Could not find created transaction ID in YNAB response.", env.Data)
		}
		s.announceCreated(ctx, in, amount, id)
		return textResult("Transaction created successfully. ID: " + id).withKnowledge(env.Data.ServerKnowledge), nil
	})
}

func (s *Toolset) announceCreated(ctx context.Context, in CreateTransactionInput, amount int64, id string) {
	if s.publisher == nil {
		return
	}
	evt := events.NewTransactionCreated(in.BudgetID, in.AccountID, id, in.Date, amount)
	evt.TraceID = telemetry.TraceID(ctx)
	if in.PayeeName != nil {
		evt.PayeeName = *in.PayeeName
	}
	if in.CategoryID != nil {
		evt.CategoryID = *in.CategoryID
	}
	if err := s.publisher.PublishTransactionCreated(ctx, evt); err != nil {
		telemetry.IncEventPublishFailure()
		s.logger.WarnContext(ctx, "publish transaction event failed",
			"transaction_id", id,
			"trace_id", evt.TraceID,
			"err", err)
	}
}
