package shopping

import (
	"strings"
	"time"
)

// Placeholder values emitted when a meal's ingredients could not be extracted.
const (
	placeholderPrefix   = "Ingredients for "
	PlaceholderQuantity = "Check recipe"
)

// RawCandidate is one ingredient occurrence before merging.
type RawCandidate struct {
	Name          string
	Quantity      string
	DayLabel      string
	EstimatedCost float64
	Category      string
}

// ShoppingItem is a merged, purchasable entry of the list.
type ShoppingItem struct {
	Name             string   `json:"name"`
	Quantity         string   `json:"quantity"`
	EstimatedCost    float64  `json:"estimated_cost"`
	Category         string   `json:"category"`
	MealAssociations []string `json:"meal_associations"`
}

// IsPlaceholder reports whether the item stands in for a failed extraction.
func (i ShoppingItem) IsPlaceholder() bool {
	return i.Quantity == PlaceholderQuantity && strings.HasPrefix(i.Name, placeholderPrefix)
}

// DailyShoppingGroup holds the items assigned to one bucket.
type DailyShoppingGroup struct {
	DayName   string         `json:"day_name"`
	Items     []ShoppingItem `json:"items"`
	TotalCost float64        `json:"total_cost"`
}

// AggregateResult is the day-grouped view of a shopping list.
type AggregateResult struct {
	ByDay        map[string]*DailyShoppingGroup `json:"by_day"`
	TotalCost    float64                        `json:"total_cost"`
	WeeklyBudget float64                        `json:"weekly_budget"`
}

// BudgetStatus compares a total against the weekly budget.
type BudgetStatus struct {
	Budget       float64 `json:"budget"`
	Total        float64 `json:"total"`
	Remaining    float64 `json:"remaining"`
	UsagePercent int     `json:"usage_percent"`
	IsOverBudget bool    `json:"is_over_budget"`
}

// CategorySpend is the summed cost of one category.
type CategorySpend struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Items    int     `json:"items"`
}

// ShoppingList represents a generated shopping list for a meal plan.
type ShoppingList struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	MealPlanID   int64           `json:"meal_plan_id"`
	WeeklyBudget float64         `json:"weekly_budget"`
	Items        []ShoppingItem  `json:"items"`
	Summary      AggregateResult `json:"summary"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Budget returns the budget status of the list.
func (l *ShoppingList) Budget() BudgetStatus {
	return NewBudgetStatus(l.Summary.TotalCost, l.WeeklyBudget)
}

// Placeholders returns the items that need manual follow-up.
func (l *ShoppingList) Placeholders() []ShoppingItem {
	var out []ShoppingItem
	for _, it := range l.Items {
		if it.IsPlaceholder() {
			out = append(out, it)
		}
	}
	return out
}
