package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-meal-shopper/internal/database"
	"ai-meal-shopper/internal/shared"

	"github.com/google/uuid"
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

const selectList = `SELECT id, user_id, meal_plan_id, weekly_budget, items, created_at FROM shopping_lists`

// Save stores a shopping list. A list without an ID is given one.
func (r *Repository) Save(ctx context.Context, list *ShoppingList) error {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (id, user_id, meal_plan_id, weekly_budget, total_cost, items, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		list.ID, list.UserID, list.MealPlanID, list.WeeklyBudget, list.Summary.TotalCost,
		string(itemsJSON), database.FormatTime(list.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shopping list: %w", err)
	}
	return nil
}

// Get retrieves a shopping list by ID, or shared.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (*ShoppingList, error) {
	list, err := scanList(r.db.QueryRowContext(ctx, selectList+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list %s: %w", id, err)
	}
	return list, nil
}

// GetByMealPlanID retrieves the latest shopping list of a meal plan.
func (r *Repository) GetByMealPlanID(ctx context.Context, mealPlanID int64) (*ShoppingList, error) {
	list, err := scanList(r.db.QueryRowContext(ctx,
		selectList+` WHERE meal_plan_id = ? ORDER BY created_at DESC LIMIT 1`, mealPlanID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No shopping list found
		}
		return nil, fmt.Errorf("failed to get shopping list by meal plan ID: %w", err)
	}
	return list, nil
}

// DeleteByMealPlanID deletes the shopping lists of a meal plan.
func (r *Repository) DeleteByMealPlanID(ctx context.Context, mealPlanID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE meal_plan_id = ?`, mealPlanID); err != nil {
		return fmt.Errorf("failed to delete shopping lists of meal plan %d: %w", mealPlanID, err)
	}
	return nil
}

func scanList(row *sql.Row) (*ShoppingList, error) {
	var (
		list      ShoppingList
		items     string
		createdAt string
	)
	if err := row.Scan(&list.ID, &list.UserID, &list.MealPlanID, &list.WeeklyBudget, &items, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}

	var err error
	if list.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}

	// The summary is derived data and is rebuilt rather than stored.
	list.Summary = Aggregate(list.Items, list.WeeklyBudget)
	return &list, nil
}
