package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RoutingTransactionCreated is the topic key for TransactionCreated.
const RoutingTransactionCreated = "transaction.created"

// TransactionCreated announces a transaction written through the hub.
// Amount is in milliunits.
type TransactionCreated struct {
	EventID       string    `json:"event_id"`
	TraceID       string    `json:"trace_id,omitempty"`
	BudgetID      string    `json:"budget_id"`
	AccountID     string    `json:"account_id"`
	TransactionID string    `json:"transaction_id"`
	Date          string    `json:"date"`
	Amount        int64     `json:"amount"`
	PayeeName     string    `json:"payee_name,omitempty"`
	CategoryID    string    `json:"category_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewTransactionCreated stamps a fresh event id and the current time.
func NewTransactionCreated(budgetID, accountID, transactionID, date string, amount int64) TransactionCreated {
	return TransactionCreated{
		EventID:       uuid.New().String(),
		BudgetID:      budgetID,
		AccountID:     accountID,
		TransactionID: transactionID,
		Date:          date,
		Amount:        amount,
		OccurredAt:    time.Now().UTC(),
	}
}

func (m TransactionCreated) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedFromJSON(data []byte) (*TransactionCreated, error) {
	var msg TransactionCreated
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
