package ynab

// Response envelopes. Each mirrors {data: {<resource>: ...}}. Amounts are
// milliunits throughout.

type BudgetsResponse struct {
	Data *BudgetsData `json:"data" validate:"required"`
}

type BudgetsData struct {
	Budgets         []Budget `json:"budgets" validate:"dive"`
	ServerKnowledge *int64   `json:"server_knowledge"`
}

type Budget struct {
	ID             string  `json:"id" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	LastModifiedOn *string `json:"last_modified_on"`
	FirstMonth     *string `json:"first_month"`
	LastMonth      *string `json:"last_month"`
}

type AccountsResponse struct {
	Data *AccountsData `json:"data" validate:"required"`
}

type AccountsData struct {
	Accounts        []Account `json:"accounts" validate:"dive"`
	ServerKnowledge *int64    `json:"server_knowledge"`
}

type AccountResponse struct {
	Data *AccountData `json:"data" validate:"required"`
}

// AccountData.Account is nil when the upstream has no such account.
type AccountData struct {
	Account *Account `json:"account"`
}

type Account struct {
	ID               string  `json:"id" validate:"required"`
	Name             string  `json:"name" validate:"required"`
	Type             string  `json:"type"`
	OnBudget         bool    `json:"on_budget"`
	Closed           bool    `json:"closed"`
	Note             *string `json:"note"`
	Balance          int64   `json:"balance"`
	ClearedBalance   int64   `json:"cleared_balance"`
	UnclearedBalance int64   `json:"uncleared_balance"`
	Deleted          bool    `json:"deleted"`
}

type TransactionsResponse struct {
	Data *TransactionsData `json:"data" validate:"required"`
}

type TransactionsData struct {
	Transactions    []Transaction `json:"transactions" validate:"dive"`
	ServerKnowledge *int64        `json:"server_knowledge"`
}

type Transaction struct {
	ID           string  `json:"id" validate:"required"`
	Date         string  `json:"date" validate:"required"`
	Amount       int64   `json:"amount"`
	Memo         *string `json:"memo"`
	Cleared      string  `json:"cleared"`
	Approved     bool    `json:"approved"`
	AccountID    string  `json:"account_id"`
	AccountName  string  `json:"account_name"`
	PayeeName    *string `json:"payee_name"`
	CategoryName *string `json:"category_name"`
	Deleted      bool    `json:"deleted"`
}

type CategoriesResponse struct {
	Data *CategoriesData `json:"data" validate:"required"`
}

type CategoriesData struct {
	CategoryGroups  []CategoryGroup `json:"category_groups" validate:"dive"`
	ServerKnowledge *int64          `json:"server_knowledge"`
}

type CategoryGroup struct {
	ID         string     `json:"id" validate:"required"`
	Name       string     `json:"name" validate:"required"`
	Hidden     bool       `json:"hidden"`
	Deleted    bool       `json:"deleted"`
	Categories []Category `json:"categories" validate:"dive"`
}

type Category struct {
	ID                     string   `json:"id" validate:"required"`
	CategoryGroupID        string   `json:"category_group_id"`
	Name                   string   `json:"name" validate:"required"`
	Hidden                 bool     `json:"hidden"`
	Note                   *string  `json:"note"`
	Budgeted               int64    `json:"budgeted"`
	Activity               int64    `json:"activity"`
	Balance                int64    `json:"balance"`
	GoalType               *string  `json:"goal_type"`
	GoalTarget             *int64   `json:"goal_target"`
	GoalPercentageComplete *float64 `json:"goal_percentage_complete"`
	Deleted                bool     `json:"deleted"`
}

type CategoryResponse struct {
	Data *CategoryData `json:"data" validate:"required"`
}

// CategoryData.Category is nil when the category does not exist for the month.
type CategoryData struct {
	Category *Category `json:"category"`
}

type MonthResponse struct {
	Data *MonthData `json:"data" validate:"required"`
}

// MonthData.Month is nil when the month could not be resolved.
type MonthData struct {
	Month *MonthDetail `json:"month"`
}

type MonthDetail struct {
	Month        string     `json:"month" validate:"required"`
	Note         *string    `json:"note"`
	Income       int64      `json:"income"`
	Budgeted     int64      `json:"budgeted"`
	Activity     int64      `json:"activity"`
	ToBeBudgeted int64      `json:"to_be_budgeted"`
	AgeOfMoney   *int64     `json:"age_of_money"`
	Deleted      bool       `json:"deleted"`
	Categories   []Category `json:"categories" validate:"dive"`
}

// SaveTransactionRequest is the POST body for creating one transaction.
type SaveTransactionRequest struct {
	Transaction NewTransaction `json:"transaction"`
}

type NewTransaction struct {
	AccountID  string  `json:"account_id"`
	Date       string  `json:"date"`
	Amount     int64   `json:"amount"`
	PayeeName  *string `json:"payee_name,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	Memo       *string `json:"memo,omitempty"`
	Cleared    *string `json:"cleared,omitempty"`
	Approved   *bool   `json:"approved,omitempty"`
}

type SaveTransactionResponse struct {
	Data *SaveTransactionData `json:"data" validate:"required"`
}

type SaveTransactionData struct {
	TransactionIDs     []string        `json:"transaction_ids"`
	Transaction        *TransactionRef `json:"transaction"`
	DuplicateImportIDs []string        `json:"duplicate_import_ids"`
	ServerKnowledge    *int64          `json:"server_knowledge"`
}

type TransactionRef struct {
	ID string `json:"id"`
}

// CreatedID returns the id of the created transaction, preferring
// transaction_ids[0] over transaction.id.
func (d *SaveTransactionData) CreatedID() (string, bool) {
	if len(d.TransactionIDs) > 0 && d.TransactionIDs[0] != "" {
		return d.TransactionIDs[0], true
	}
	if d.Transaction != nil && d.Transaction.ID != "" {
		return d.Transaction.ID, true
	}
	return "", false
}
