package shopping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bucketNames(r AggregateResult) []string {
	var names []string
	for _, g := range r.Buckets() {
		names = append(names, g.DayName)
	}
	return names
}

func TestAggregate_DayAssignment(t *testing.T) {
	items := []ShoppingItem{
		{Name: "Bread", EstimatedCost: 2.5, MealAssociations: []string{"Tuesday Breakfast", "Thursday Dinner"}},
		{Name: "Stock", EstimatedCost: 1.5, MealAssociations: []string{"Shared Prep"}},
		{Name: "Rice", EstimatedCost: 3, MealAssociations: []string{"Sunday Snack 1"}},
		{Name: "Water", EstimatedCost: 0, MealAssociations: nil},
	}

	for i := 0; i < 3; i++ {
		res := Aggregate(items, 50)
		assert.Equal(t, "Bread", res.ByDay["tuesday"].Items[0].Name)
		assert.Empty(t, res.ByDay["thursday"].Items)
		require.Len(t, res.ByDay[SharedBucket].Items, 2)
		assert.Equal(t, "Stock", res.ByDay[SharedBucket].Items[0].Name)
		assert.Equal(t, "Water", res.ByDay[SharedBucket].Items[1].Name)
		assert.Equal(t, "Rice", res.ByDay["sunday"].Items[0].Name)
		assert.Empty(t, res.ByDay[GeneralBucket].Items)
	}
}

func TestAggregate_TotalInvariant(t *testing.T) {
	items := []ShoppingItem{
		{Name: "A", EstimatedCost: 0.1, MealAssociations: []string{"Monday Lunch"}},
		{Name: "B", EstimatedCost: 0.2, MealAssociations: []string{"Monday Dinner"}},
		{Name: "C", EstimatedCost: 4.37, MealAssociations: []string{"Friday Dinner"}},
		{Name: "D", EstimatedCost: 12.99, MealAssociations: []string{"Extras"}},
		{Name: "E", EstimatedCost: 3.33, MealAssociations: []string{"saturday pre-workout"}},
	}
	res := Aggregate(items, 100)

	var sum float64
	for _, g := range res.Buckets() {
		var groupSum float64
		for _, it := range g.Items {
			groupSum += it.EstimatedCost
		}
		assert.InDelta(t, groupSum, g.TotalCost, 1e-9, g.DayName)
		sum += g.TotalCost
	}
	assert.InDelta(t, sum, res.TotalCost, 1e-9)
	assert.Equal(t, 100.0, res.WeeklyBudget)
	assert.Len(t, res.ByDay["monday"].Items, 2)
	assert.Len(t, res.ByDay["saturday"].Items, 1)
}

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil, 80)
	assert.Equal(t, BucketOrder, bucketNames(res))
	assert.Zero(t, res.TotalCost)
	for _, g := range res.Buckets() {
		assert.NotNil(t, g.Items)
	}
}

func TestBucketOrder(t *testing.T) {
	assert.Equal(t, []string{
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
		SharedBucket, GeneralBucket,
	}, BucketOrder)
}

func TestNewBudgetStatus(t *testing.T) {
	t.Run("WithinMargin", func(t *testing.T) {
		s := NewBudgetStatus(102.0, 100.0)
		assert.False(t, s.IsOverBudget)
		assert.Equal(t, 100, s.UsagePercent)
		assert.InDelta(t, -2.0, s.Remaining, 1e-9)
	})

	t.Run("OverMargin", func(t *testing.T) {
		s := NewBudgetStatus(102.01, 100.0)
		assert.True(t, s.IsOverBudget)
		assert.Equal(t, 100, s.UsagePercent)
	})

	t.Run("UnderBudget", func(t *testing.T) {
		s := NewBudgetStatus(45.6, 100.0)
		assert.False(t, s.IsOverBudget)
		assert.Equal(t, 46, s.UsagePercent)
		assert.InDelta(t, 54.4, s.Remaining, 1e-9)
	})

	t.Run("ZeroBudget", func(t *testing.T) {
		s := NewBudgetStatus(10, 0)
		assert.True(t, s.IsOverBudget)
		assert.Equal(t, 0, s.UsagePercent)
	})
}

func TestCategoryBreakdown(t *testing.T) {
	items := []ShoppingItem{
		{Name: "Oats", Category: CategoryGrains, EstimatedCost: 3},
		{Name: "Chicken", Category: CategoryMeat, EstimatedCost: 9},
		{Name: "Milk", Category: CategoryDairy, EstimatedCost: 3},
		{Name: "Rice", Category: CategoryGrains, EstimatedCost: 2},
		{Name: "Ingredients for Soup", Category: CategoryOther, EstimatedCost: 0},
	}

	all := CategoryBreakdown(items, 0)
	require.Len(t, all, 4)
	assert.Equal(t, CategorySpend{Category: CategoryMeat, Total: 9, Items: 1}, all[0])
	assert.Equal(t, CategorySpend{Category: CategoryGrains, Total: 5, Items: 2}, all[1])
	assert.Equal(t, CategoryDairy, all[2].Category)
	assert.Equal(t, CategoryOther, all[3].Category)

	top := CategoryBreakdown(items, 2)
	assert.Len(t, top, 2)

	assert.Empty(t, CategoryBreakdown(nil, 3))
}
