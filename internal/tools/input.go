package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Tool inputs. Field tags carry the constraints; Registry.Call rejects
// anything that fails them before a tool runs.

type ListBudgetsInput struct {
	LastKnowledgeOfServer *int64 `json:"last_knowledge_of_server,omitempty"`
}

type ListAccountsInput struct {
	BudgetID string `json:"budget_id" validate:"required"`
}

type ListTransactionsInput struct {
	BudgetID              string `json:"budget_id" validate:"required"`
	AccountID             string `json:"account_id,omitempty"`
	SinceDate             string `json:"since_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Type                  string `json:"type,omitempty" validate:"omitempty,oneof=uncategorized unapproved"`
	LastKnowledgeOfServer *int64 `json:"last_knowledge_of_server,omitempty"`
}

type GetAccountBalanceInput struct {
	BudgetID  string `json:"budget_id" validate:"required"`
	AccountID string `json:"account_id" validate:"required"`
}

type ListCategoriesInput struct {
	BudgetID              string `json:"budget_id" validate:"required"`
	LastKnowledgeOfServer *int64 `json:"last_knowledge_of_server,omitempty"`
}

type GetBudgetSummaryInput struct {
	BudgetID string `json:"budget_id" validate:"required"`
	Month    string `json:"month,omitempty" validate:"omitempty,datetime=2006-01-02|eq=current"`
}

type GetCategoryInfoInput struct {
	BudgetID   string `json:"budget_id" validate:"required"`
	CategoryID string `json:"category_id" validate:"required"`
	Month      string `json:"month,omitempty" validate:"omitempty,datetime=2006-01-02|eq=current"`
}

type CreateTransactionInput struct {
	BudgetID   string  `json:"budget_id" validate:"required"`
	AccountID  string  `json:"account_id" validate:"required"`
	Amount     *int64  `json:"amount" validate:"required"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	PayeeName  *string `json:"payee_name,omitempty" validate:"omitempty,max=50"`
	CategoryID *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Memo       *string `json:"memo,omitempty" validate:"omitempty,max=200"`
	Cleared    *string `json:"cleared,omitempty" validate:"omitempty,oneof=cleared uncleared reconciled"`
	Approved   *bool   `json:"approved,omitempty"`
}

// FieldIssue names one rejected argument.
type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// InputError reports tool arguments that failed decoding or validation.
type InputError struct {
	Tool   string
	Issues []FieldIssue
}

func (e *InputError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Reason)
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(parts, "; "))
}

func (e *InputError) ErrorCode() string {
	return "invalid_arguments"
}

var inputs = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeInput parses raw into T and validates it. Unknown keys are ignored.
// An absent or null argument object decodes as the zero T.
func decodeInput[T any](tool string, raw json.RawMessage) (*T, error) {
	in := new(T)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, in); err != nil {
			return nil, &InputError{Tool: tool, Issues: []FieldIssue{decodeIssue(err)}}
		}
	}
	if err := inputs.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, &InputError{Tool: tool, Issues: []FieldIssue{{Field: "(arguments)", Reason: err.Error()}}}
		}
		issues := make([]FieldIssue, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, FieldIssue{Field: fe.Field(), Reason: inputReason(fe)})
		}
		return nil, &InputError{Tool: tool, Issues: issues}
	}
	return in, nil
}

func decodeIssue(err error) FieldIssue {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return FieldIssue{Field: te.Field, Reason: fmt.Sprintf("expected %s, got %s", te.Type, te.Value)}
	}
	return FieldIssue{Field: "(arguments)", Reason: err.Error()}
}

func inputReason(fe validator.FieldError) string {
	tag := fe.Tag()
	switch {
	case tag == "required":
		return "is required"
	case strings.Contains(tag, "eq=current"):
		return "must be YYYY-MM-DD or \"current\""
	case tag == "datetime":
		return "must be a date in YYYY-MM-DD format"
	case tag == "max":
		return "must be at most " + fe.Param() + " characters"
	case tag == "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case tag == "uuid":
		return "must be a UUID"
	default:
		return "failed " + tag
	}
}
