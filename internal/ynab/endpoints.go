package ynab

import (
	"net/url"
	"strconv"
	"strings"
)

// CurrentMonth is the month sentinel the API resolves to the present month.
const CurrentMonth = "current"

// query keeps parameters in insertion order; url.Values would sort them.
type query []string

func (q *query) add(key, value string) {
	*q = append(*q, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (q query) appendTo(path string) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + strings.Join(q, "&")
}

func seg(id string) string {
	return url.PathEscape(id)
}

// HasKnowledge reports whether a delta token was given. Zero counts as none.
func HasKnowledge(lastKnowledge *int64) bool {
	return lastKnowledge != nil && *lastKnowledge != 0
}

func knowledge(q *query, lastKnowledge *int64) {
	if HasKnowledge(lastKnowledge) {
		q.add("last_knowledge_of_server", strconv.FormatInt(*lastKnowledge, 10))
	}
}

func BudgetsPath(lastKnowledge *int64) string {
	var q query
	knowledge(&q, lastKnowledge)
	return q.appendTo("/budgets")
}

func AccountsPath(budgetID string) string {
	return "/budgets/" + seg(budgetID) + "/accounts"
}

func AccountPath(budgetID, accountID string) string {
	return AccountsPath(budgetID) + "/" + seg(accountID)
}

// TransactionFilter holds the optional list-transactions parameters.
type TransactionFilter struct {
	AccountID     string
	SinceDate     string
	Type          string
	LastKnowledge *int64
}

// TransactionsPath scopes the listing to one account when f.AccountID is set
// and to the whole budget otherwise. Query parameters keep the order
// since_date, type, last_knowledge_of_server.
func TransactionsPath(budgetID string, f TransactionFilter) string {
	path := "/budgets/" + seg(budgetID) + "/transactions"
	if f.AccountID != "" {
		path = AccountPath(budgetID, f.AccountID) + "/transactions"
	}

	var q query
	if f.SinceDate != "" {
		q.add("since_date", f.SinceDate)
	}
	if f.Type != "" {
		q.add("type", f.Type)
	}
	knowledge(&q, f.LastKnowledge)
	return q.appendTo(path)
}

func CategoriesPath(budgetID string, lastKnowledge *int64) string {
	var q query
	knowledge(&q, lastKnowledge)
	return q.appendTo("/budgets/" + seg(budgetID) + "/categories")
}

// MonthPath falls back to CurrentMonth when month is empty.
func MonthPath(budgetID, month string) string {
	if month == "" {
		month = CurrentMonth
	}
	return "/budgets/" + seg(budgetID) + "/months/" + seg(month)
}

func MonthCategoryPath(budgetID, month, categoryID string) string {
	return MonthPath(budgetID, month) + "/categories/" + seg(categoryID)
}

func CreateTransactionPath(budgetID string) string {
	return "/budgets/" + seg(budgetID) + "/transactions"
}
