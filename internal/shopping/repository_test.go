package shopping

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"ai-meal-shopper/internal/database"
	"ai-meal-shopper/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "shopping.db"))
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db.SQL)

	items := []ShoppingItem{
		{Name: "Oats", Quantity: "2 cups", EstimatedCost: 3.5, Category: CategoryGrains, MealAssociations: []string{"Monday Breakfast"}},
		{Name: "Ingredients for Stew", Quantity: PlaceholderQuantity, Category: CategoryOther, MealAssociations: []string{"Shared Prep"}},
	}
	list := &ShoppingList{
		UserID:       "u1",
		MealPlanID:   3,
		WeeklyBudget: 80,
		Items:        items,
		Summary:      Aggregate(items, 80),
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, list))
	require.NotEmpty(t, list.ID)

	t.Run("Get", func(t *testing.T) {
		got, err := repo.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.Equal(t, list.Items, got.Items)
		assert.Equal(t, 3.5, got.Summary.TotalCost)
		assert.Len(t, got.Summary.ByDay[SharedBucket].Items, 1)
		assert.True(t, list.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("GetByMealPlanID", func(t *testing.T) {
		got, err := repo.GetByMealPlanID(ctx, 3)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, list.ID, got.ID)

		none, err := repo.GetByMealPlanID(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("DeleteByMealPlanID", func(t *testing.T) {
		require.NoError(t, repo.DeleteByMealPlanID(ctx, 3))
		got, err := repo.GetByMealPlanID(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
