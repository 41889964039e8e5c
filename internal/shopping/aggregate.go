package shopping

import (
	"math"
	"sort"
	"strings"

	"ai-meal-shopper/internal/planner"
)

// Buckets that are not weekdays.
const (
	SharedBucket  = "shared"
	GeneralBucket = "general"
)

// overBudgetTolerance lets a list run 2% over budget before it is flagged.
const overBudgetTolerance = 1.02

// BucketOrder is the fixed order of buckets in an AggregateResult.
var BucketOrder = func() []string {
	out := make([]string, 0, len(planner.Days)+2)
	for _, d := range planner.Days {
		out = append(out, string(d))
	}
	return append(out, SharedBucket, GeneralBucket)
}()

// Aggregate groups items by the first weekday named in their meal
// associations. Items without a weekday go to the shared bucket.
func Aggregate(items []ShoppingItem, weeklyBudget float64) AggregateResult {
	byDay := make(map[string]*DailyShoppingGroup, len(BucketOrder))
	for _, name := range BucketOrder {
		byDay[name] = &DailyShoppingGroup{DayName: name, Items: []ShoppingItem{}}
	}

	for _, item := range items {
		g := byDay[bucketFor(item.MealAssociations)]
		g.Items = append(g.Items, item)
		g.TotalCost += item.EstimatedCost
	}

	var total float64
	for _, name := range BucketOrder {
		total += byDay[name].TotalCost
	}

	return AggregateResult{ByDay: byDay, TotalCost: total, WeeklyBudget: weeklyBudget}
}

func bucketFor(associations []string) string {
	for _, a := range associations {
		lower := strings.ToLower(a)
		for _, d := range planner.Days {
			if strings.Contains(lower, string(d)) {
				return string(d)
			}
		}
	}
	return SharedBucket
}

// Buckets returns the groups in BucketOrder.
func (r AggregateResult) Buckets() []*DailyShoppingGroup {
	out := make([]*DailyShoppingGroup, 0, len(BucketOrder))
	for _, name := range BucketOrder {
		if g, ok := r.ByDay[name]; ok {
			out = append(out, g)
		}
	}
	return out
}

// NewBudgetStatus compares total against budget.
func NewBudgetStatus(total, budget float64) BudgetStatus {
	s := BudgetStatus{
		Budget:       budget,
		Total:        total,
		Remaining:    budget - total,
		IsOverBudget: total > budget*overBudgetTolerance,
	}
	if budget > 0 {
		s.UsagePercent = int(math.Min(math.Round(total/budget*100), 100))
	}
	return s
}

// CategoryBreakdown sums item costs per category, most expensive first.
// Ties keep the order in which categories first appear. topN <= 0 returns all.
func CategoryBreakdown(items []ShoppingItem, topN int) []CategorySpend {
	index := make(map[string]int)
	var out []CategorySpend
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(out)
			index[item.Category] = i
			out = append(out, CategorySpend{Category: item.Category})
		}
		out[i].Total += item.EstimatedCost
		out[i].Items++
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
