package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/toolhub/ynabhub/internal/ynab"
)

func (s *Toolset) ListBudgets(ctx context.Context, in ListBudgetsInput) Result {
	req := request{tool: ToolListBudgets, endpoint: ynab.BudgetsPath(in.LastKnowledgeOfServer)}
	return execute(ctx, s, req, func(env *ynab.BudgetsResponse) (Result, error) {
		data := env.Data
		if len(data.Budgets) == 0 {
			if ynab.HasKnowledge(in.LastKnowledgeOfServer) {
				return textResult("No new or updated budgets found since last knowledge.").withKnowledge(data.ServerKnowledge), nil
			}
			return textResult("No budgets found.").withKnowledge(data.ServerKnowledge), nil
		}

		var b strings.Builder
		b.WriteString("Available Budgets:")
		for _, budget := range data.Budgets {
			fmt.Fprintf(&b, "\n- %s (ID: %s)", budget.Name, budget.ID)
		}
		return textResult(b.String()).withKnowledge(data.ServerKnowledge), nil
	})
}
