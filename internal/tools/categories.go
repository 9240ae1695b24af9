package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/toolhub/ynabhub/internal/ynab"
)

// ListCategories drops hidden or deleted groups and categories, and groups
// left with nothing visible.
func (s *Toolset) ListCategories(ctx context.Context, in ListCategoriesInput) Result {
	req := request{tool: ToolListCategories, endpoint: ynab.CategoriesPath(in.BudgetID, in.LastKnowledgeOfServer)}
	return execute(ctx, s, req, func(env *ynab.CategoriesResponse) (Result, error) {
		data := env.Data
		if len(data.CategoryGroups) == 0 {
			if ynab.HasKnowledge(in.LastKnowledgeOfServer) {
				return textResult("No new or updated categories found since last knowledge.").withKnowledge(data.ServerKnowledge), nil
			}
			return textResult("No categories found.").withKnowledge(data.ServerKnowledge), nil
		}

		sections := visibleCategorySections(data.CategoryGroups)
		if len(sections) == 0 {
			return textResult("No categories found.").withKnowledge(data.ServerKnowledge), nil
		}
		return textResult("Categories:\n\n" + strings.Join(sections, "\n\n")).withKnowledge(data.ServerKnowledge), nil
	})
}

func visibleCategorySections(groups []ynab.CategoryGroup) []string {
	var sections []string
	for _, g := range groups {
		if g.Hidden || g.Deleted {
			continue
		}
		var lines []string
		for _, c := range g.Categories {
			if c.Hidden || c.Deleted {
				continue
			}
			lines = append(lines, fmt.Sprintf("  - %s (ID: %s)", c.Name, c.ID))
		}
		if len(lines) == 0 {
			continue
		}
		sections = append(sections, g.Name+":\n"+strings.Join(lines, "\n"))
	}
	return sections
}
