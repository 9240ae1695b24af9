package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/toolhub/ynabhub/internal/tools"
)

// errToolFailed marks a tool result already printed as an error.
var errToolFailed = errors.New("tool call failed")

var errorOutput = color.New(color.FgRed)

// toolRunner turns positional args and flags into a tool input.
type toolRunner func(cmd *cobra.Command, args []string) (any, error)

func newToolCmd(opts *rootOptions, use, short, tool string, nargs int, input toolRunner) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := input(cmd, args)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(in)
			if err != nil {
				return fmt.Errorf("encode arguments: %w", err)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, opts.cliLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			res, err := a.registry.Call(ctx, tool, raw)
			if err != nil {
				return err
			}
			// Error results go to stdout like any other result; only the
			// exit status tells them apart.
			if res.IsError {
				errorOutput.Fprintln(cmd.OutOrStdout(), res.Text())
				return errToolFailed
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text())
			return nil
		},
	}
}

func toolCommands(opts *rootOptions) []*cobra.Command {
	var (
		txAccountID, txSinceDate, txType string
		txKnowledge                      int64
		summaryMonth, categoryMonth      string
		payeeName, categoryID, memo      string
		cleared                          string
		approved                         bool
	)

	listBudgets := newToolCmd(opts, "list-budgets", "List budgets", tools.ToolListBudgets, 0,
		func(*cobra.Command, []string) (any, error) {
			return tools.ListBudgetsInput{}, nil
		})

	listAccounts := newToolCmd(opts, "list-accounts <budget-id>", "List open accounts in a budget", tools.ToolListAccounts, 1,
		func(_ *cobra.Command, args []string) (any, error) {
			return tools.ListAccountsInput{BudgetID: args[0]}, nil
		})

	listTransactions := newToolCmd(opts, "list-transactions <budget-id>", "List transactions in a budget or account", tools.ToolListTransactions, 1,
		func(cmd *cobra.Command, args []string) (any, error) {
			in := tools.ListTransactionsInput{
				BudgetID:  args[0],
				AccountID: txAccountID,
				SinceDate: txSinceDate,
				Type:      txType,
			}
			if cmd.Flags().Changed("last-knowledge") {
				in.LastKnowledgeOfServer = &txKnowledge
			}
			return in, nil
		})
	listTransactions.Flags().StringVar(&txAccountID, "account-id", "", "only this account's transactions")
	listTransactions.Flags().StringVar(&txSinceDate, "since-date", "", "only on or after this date (YYYY-MM-DD)")
	listTransactions.Flags().StringVar(&txType, "type", "", "uncategorized or unapproved")
	listTransactions.Flags().Int64Var(&txKnowledge, "last-knowledge", 0, "server knowledge for a delta request")

	getBalance := newToolCmd(opts, "get-balance <budget-id> <account-id>", "Show an account's balances", tools.ToolGetAccountBalance, 2,
		func(_ *cobra.Command, args []string) (any, error) {
			return tools.GetAccountBalanceInput{BudgetID: args[0], AccountID: args[1]}, nil
		})

	listCategories := newToolCmd(opts, "list-categories <budget-id>", "List visible categories by group", tools.ToolListCategories, 1,
		func(_ *cobra.Command, args []string) (any, error) {
			return tools.ListCategoriesInput{BudgetID: args[0]}, nil
		})

	getSummary := newToolCmd(opts, "get-summary <budget-id>", "Summarize a budget month", tools.ToolGetBudgetSummary, 1,
		func(_ *cobra.Command, args []string) (any, error) {
			return tools.GetBudgetSummaryInput{BudgetID: args[0], Month: summaryMonth}, nil
		})
	getSummary.Flags().StringVar(&summaryMonth, "month", "", "month as YYYY-MM-DD or 'current' (default current)")

	getCategoryInfo := newToolCmd(opts, "get-category-info <budget-id> <category-id>", "Show a category for a month", tools.ToolGetCategoryInfo, 2,
		func(_ *cobra.Command, args []string) (any, error) {
			return tools.GetCategoryInfoInput{BudgetID: args[0], CategoryID: args[1], Month: categoryMonth}, nil
		})
	getCategoryInfo.Flags().StringVar(&categoryMonth, "month", "", "month as YYYY-MM-DD or 'current' (default current)")

	createTransaction := newToolCmd(opts, "create-transaction <budget-id> <account-id> <amount> <date>",
		"Create a transaction (amount in milliunits, negative for outflow)", tools.ToolCreateTransaction, 4,
		func(cmd *cobra.Command, args []string) (any, error) {
			amount, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid amount %q: must be an integer number of milliunits", args[2])
			}
			in := tools.CreateTransactionInput{
				BudgetID:  args[0],
				AccountID: args[1],
				Amount:    &amount,
				Date:      args[3],
			}
			flags := cmd.Flags()
			if flags.Changed("payee-name") {
				in.PayeeName = &payeeName
			}
			if flags.Changed("category-id") {
				in.CategoryID = &categoryID
			}
			if flags.Changed("memo") {
				in.Memo = &memo
			}
			if flags.Changed("cleared") {
				in.Cleared = &cleared
			}
			if flags.Changed("approved") {
				in.Approved = &approved
			}
			return in, nil
		})
	createTransaction.Flags().StringVar(&payeeName, "payee-name", "", "payee name (max 50 characters)")
	createTransaction.Flags().StringVar(&categoryID, "category-id", "", "category UUID")
	createTransaction.Flags().StringVar(&memo, "memo", "", "memo (max 200 characters)")
	createTransaction.Flags().StringVar(&cleared, "cleared", "", "cleared, uncleared or reconciled")
	createTransaction.Flags().BoolVar(&approved, "approved", false, "mark the transaction approved")

	return []*cobra.Command{
		listBudgets,
		listAccounts,
		listTransactions,
		getBalance,
		listCategories,
		getSummary,
		getCategoryInfo,
		createTransaction,
	}
}
