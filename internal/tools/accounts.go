package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/toolhub/ynabhub/internal/ynab"
)

// ListAccounts shows open accounts only.
func (s *Toolset) ListAccounts(ctx context.Context, in ListAccountsInput) Result {
	req := request{tool: ToolListAccounts, endpoint: ynab.AccountsPath(in.BudgetID)}
	return execute(ctx, s, req, func(env *ynab.AccountsResponse) (Result, error) {
		var b strings.Builder
		for _, acc := range env.Data.Accounts {
			if acc.Closed {
				continue
			}
			fmt.Fprintf(&b, "\n- %s (Type: %s, Balance: %s, ID: %s)",
				acc.Name, acc.Type, ynab.FormatMilliunits(acc.Balance), acc.ID)
		}
		if b.Len() == 0 {
			return textResult("No open accounts found for this budget."), nil
		}
		return textResult("Open Accounts:" + b.String()), nil
	})
}

func (s *Toolset) GetAccountBalance(ctx context.Context, in GetAccountBalanceInput) Result {
	req := request{tool: ToolGetAccountBalance, endpoint: ynab.AccountPath(in.BudgetID, in.AccountID)}
	return execute(ctx, s, req, func(env *ynab.AccountResponse) (Result, error) {
		acc := env.Data.Account
		if acc == nil {
			return notFoundResult(fmt.Sprintf("Account with ID %s not found.", in.AccountID)), nil
		}
		return textResult(fmt.Sprintf("Account: %s (ID: %s)\nBalance: %s",
			acc.Name, acc.ID, ynab.FormatMilliunits(acc.Balance))), nil
	})
}
