package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/toolhub/ynabhub/internal/ynab"
)

func (s *Toolset) ListTransactions(ctx context.Context, in ListTransactionsInput) Result {
	endpoint := ynab.TransactionsPath(in.BudgetID, ynab.TransactionFilter{
		AccountID:     in.AccountID,
		SinceDate:     in.SinceDate,
		Type:          in.Type,
		LastKnowledge: in.LastKnowledgeOfServer,
	})
	req := request{tool: ToolListTransactions, endpoint: endpoint}
	return execute(ctx, s, req, func(env *ynab.TransactionsResponse) (Result, error) {
		data := env.Data
		if len(data.Transactions) == 0 {
			return textResult("No transactions found matching the criteria.").withKnowledge(data.ServerKnowledge), nil
		}

		var b strings.Builder
		b.WriteString("Transactions:")
		for _, t := range data.Transactions {
			fmt.Fprintf(&b, "\n- %s | %s | %s | %s (ID: %s)",
				t.Date, orNA(t.PayeeName), orNA(t.CategoryName), ynab.FormatMilliunits(t.Amount), t.ID)
		}
		return textResult(b.String()).withKnowledge(data.ServerKnowledge), nil
	})
}
