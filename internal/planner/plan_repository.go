package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-meal-shopper/internal/database"
	"ai-meal-shopper/internal/shared"
)

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d, now: time.Now}
}

// Save inserts a new meal plan and sets its ID and CreatedAt.
func (r *PlanRepository) Save(ctx context.Context, plan *MealPlan) (int64, error) {
	planData, err := json.Marshal(plan.WeeklyMeals)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal meal plan: %w", err)
	}

	createdAt := r.now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO meal_plans (user_id, week_start, plan_data, created_at) VALUES (?, ?, ?, ?)`,
		plan.UserID, database.FormatTime(plan.WeekStart), string(planData), database.FormatTime(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert meal plan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read meal plan id: %w", err)
	}
	plan.ID = id
	plan.CreatedAt = createdAt
	return id, nil
}

// Get returns the plan with the given ID, or shared.ErrNotFound.
func (r *PlanRepository) Get(ctx context.Context, id int64) (*MealPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, week_start, plan_data, created_at FROM meal_plans WHERE id = ?`, id)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal plan %d: %w", id, err)
	}
	return plan, nil
}

// Latest returns the most recently saved plan of a user, or shared.ErrNotFound.
func (r *PlanRepository) Latest(ctx context.Context, userID string) (*MealPlan, error) {
	plans, err := r.ListRecentByUserID(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, shared.ErrNotFound
	}
	return &plans[0], nil
}

// ListRecentByUserID retrieves the N most recent meal plans for a given user.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]MealPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, week_start, plan_data, created_at FROM meal_plans
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []MealPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for user %s: %w", userID, err)
	}
	return plans, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*MealPlan, error) {
	var (
		plan                 MealPlan
		weekStart, createdAt string
		planData             string
	)
	if err := row.Scan(&plan.ID, &plan.UserID, &weekStart, &planData, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(planData), &plan.WeeklyMeals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan data: %w", err)
	}

	var err error
	if plan.WeekStart, err = database.ParseTime(weekStart); err != nil {
		return nil, err
	}
	if plan.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &plan, nil
}
