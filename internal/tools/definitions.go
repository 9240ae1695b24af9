package tools

const (
	ToolListBudgets       = "mcp_ynab_list_budgets"
	ToolListAccounts      = "mcp_ynab_list_accounts"
	ToolListTransactions  = "mcp_ynab_list_transactions"
	ToolGetAccountBalance = "mcp_ynab_get_account_balance"
	ToolListCategories    = "mcp_ynab_list_categories"
	ToolGetBudgetSummary  = "mcp_ynab_get_budget_summary"
	ToolGetCategoryInfo   = "mcp_ynab_get_category_info"
	ToolCreateTransaction = "mcp_ynab_create_transaction"
)

// Tool describes one callable for listings. ReadOnly tools never write
// upstream.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	ReadOnly    bool           `json:"-"`
}

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func dateProp(desc string) map[string]any {
	p := prop("string", desc)
	p["pattern"] = `^\d{4}-\d{2}-\d{2}$`
	return p
}

func enumProp(desc string, values ...string) map[string]any {
	p := prop("string", desc)
	p["enum"] = values
	return p
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var budgetIDProp = prop("string", "The ID of the budget (e.g., 'last-used' or a specific UUID).")

// Definitions lists every tool in a stable order.
func Definitions() []Tool {
	return []Tool{
		{
			Name:        ToolListBudgets,
			Description: "List the budgets available to the authenticated YNAB user.",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]any{
				"last_knowledge_of_server": prop("integer", "The server knowledge for delta requests. Optional."),
			}),
		},
		{
			Name:        ToolListAccounts,
			Description: "List the open accounts of a budget with their balances.",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]any{
				"budget_id": budgetIDProp,
			}, "budget_id"),
		},
		{
			Name:        ToolListTransactions,
			Description: "List transactions of a budget, optionally for one account, since a date or by type.",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]any{
				"budget_id":                budgetIDProp,
				"account_id":               prop("string", "Filter by Account ID (optional)."),
				"since_date":               dateProp("Include transactions since this date (YYYY-MM-DD, optional)."),
				"type":                     enumProp("Filter by type (optional).", "uncategorized", "unapproved"),
				"last_knowledge_of_server": prop("integer", "Delta request token (optional)."),
			}, "budget_id"),
		},
		{
			Name:        ToolGetAccountBalance,
			Description: "Get the current balance of one account.",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]any{
				"budget_id":  budgetIDProp,
				"account_id": prop("string", "Account ID."),
			}, "budget_id", "account_id"),
		},
		{
			Name:        ToolListCategories,
			Description: "List the visible categories of a budget grouped by category group.",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]any{
				"budget_id":                budgetIDProp,
				"last_knowledge_of_server": prop("integer", "Fetch delta since last knowledge."),
			}, "budget_id"),
		},
		{
			Name:        ToolGetBudgetSummary,
			Description: "Summarize income, budgeted, activity and to-be-budgeted for a month.",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]any{
				"budget_id": budgetIDProp,
				"month":     prop("string", "Month to get summary for (YYYY-MM-DD or 'current'). Defaults to current month."),
			}, "budget_id"),
		},
		{
			Name:        ToolGetCategoryInfo,
			Description: "Get budgeted, activity, balance and goal details of one category for a month.",
			ReadOnly:    true,
			InputSchema: objectSchema(map[string]any{
				"budget_id":   budgetIDProp,
				"category_id": prop("string", "Category ID (UUID)."),
				"month":       prop("string", "Month in YYYY-MM-DD format (optional, defaults to current month)."),
			}, "budget_id", "category_id"),
		},
		{
			Name:        ToolCreateTransaction,
			Description: "Create a transaction in a budget account.",
			InputSchema: objectSchema(map[string]any{
				"budget_id":   prop("string", "Budget ID."),
				"account_id":  prop("string", "Account ID."),
				"amount":      prop("integer", "Amount in milliunits (e.g., $12.34 = 12340). Negative for outflow."),
				"date":        dateProp("Transaction date (YYYY-MM-DD)."),
				"payee_name":  map[string]any{"type": "string", "maxLength": 50, "description": "Payee name (max 50 chars)."},
				"category_id": map[string]any{"type": "string", "format": "uuid", "description": "Category ID (UUID format). Use mcp_ynab_list_categories to find IDs."},
				"memo":        map[string]any{"type": "string", "maxLength": 200, "description": "Optional memo (max 200 chars)."},
				"cleared":     enumProp("Cleared status.", "cleared", "uncleared", "reconciled"),
				"approved":    prop("boolean", "Approved status."),
			}, "budget_id", "account_id", "amount", "date"),
		},
	}
}
