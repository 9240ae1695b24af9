package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/toolhub/ynabhub/internal/ynab"
)

func monthPhrase(month string) string {
	if month == "" || month == ynab.CurrentMonth {
		return "the current month"
	}
	return "month " + month
}

func (s *Toolset) GetBudgetSummary(ctx context.Context, in GetBudgetSummaryInput) Result {
	req := request{tool: ToolGetBudgetSummary, endpoint: ynab.MonthPath(in.BudgetID, in.Month)}
	return execute(ctx, s, req, func(env *ynab.MonthResponse) (Result, error) {
		m := env.Data.Month
		if m == nil {
			return notFoundResult(fmt.Sprintf("Could not retrieve budget summary for %s.", monthPhrase(in.Month))), nil
		}

		ageOfMoney := "N/A"
		if m.AgeOfMoney != nil {
			ageOfMoney = strconv.FormatInt(*m.AgeOfMoney, 10)
		}

		lines := []string{
			"Budget Summary for Month: " + m.Month,
			strings.Repeat("-", 35),
			"Income: " + ynab.FormatMilliunits(m.Income),
			"Budgeted: " + ynab.FormatMilliunits(m.Budgeted),
			"Activity (Spending): " + ynab.FormatMilliunits(m.Activity),
			"To Be Budgeted (TBB): " + ynab.FormatMilliunits(m.ToBeBudgeted),
			"Age of Money (Days): " + ageOfMoney,
			"Note: " + orNA(m.Note),
		}
		return textResult(strings.Join(lines, "\n")), nil
	})
}

func (s *Toolset) GetCategoryInfo(ctx context.Context, in GetCategoryInfoInput) Result {
	req := request{tool: ToolGetCategoryInfo, endpoint: ynab.MonthCategoryPath(in.BudgetID, in.Month, in.CategoryID)}
	return execute(ctx, s, req, func(env *ynab.CategoryResponse) (Result, error) {
		c := env.Data.Category
		if c == nil {
			return notFoundResult(fmt.Sprintf("Category with ID %s not found for %s.", in.CategoryID, monthPhrase(in.Month))), nil
		}

		var goalTarget int64
		if c.GoalTarget != nil {
			goalTarget = *c.GoalTarget
		}
		goalPct := "N/A"
		if c.GoalPercentageComplete != nil {
			goalPct = strconv.FormatFloat(*c.GoalPercentageComplete, 'f', -1, 64) + "%"
		}

		lines := []string{
			fmt.Sprintf("Category Info: %s (ID: %s)", c.Name, c.ID),
			strings.Repeat("-", 40),
			"Budgeted: " + ynab.FormatMilliunits(c.Budgeted),
			"Activity: " + ynab.FormatMilliunits(c.Activity),
			"Balance: " + ynab.FormatMilliunits(c.Balance),
			"Goal Type: " + orNA(c.GoalType),
			"Goal Target: " + ynab.FormatMilliunits(goalTarget),
			"Goal Percentage Complete: " + goalPct,
			"Note: " + orNA(c.Note),
		}
		return textResult(strings.Join(lines, "\n")), nil
	})
}
