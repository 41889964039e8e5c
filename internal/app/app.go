package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ai-meal-shopper/internal/config"
	"ai-meal-shopper/internal/logger"
	"ai-meal-shopper/internal/metrics"
	"ai-meal-shopper/internal/planner"
	"ai-meal-shopper/internal/shared"
	"ai-meal-shopper/internal/shopping"
	"ai-meal-shopper/internal/storage"
)

// ErrEmptyPlan is returned when importing a plan without any usable meal.
var ErrEmptyPlan = errors.New("meal plan has no meals")

// App holds the application's dependencies.
type App struct {
	generator    *shopping.Generator
	planRepo     *planner.PlanRepository
	listRepo     *shopping.Repository
	listStore    *storage.ListStore // optional file export
	metricsStore *metrics.Store
	cfg          *config.Config

	// tokenUsage reports the LLM tokens spent by this process, when known.
	tokenUsage func() shared.TokenUsage
}

// NewApp creates and initializes a new App instance. listStore may be nil.
func NewApp(
	generator *shopping.Generator,
	planRepo *planner.PlanRepository,
	listRepo *shopping.Repository,
	listStore *storage.ListStore,
	metricsStore *metrics.Store,
	cfg *config.Config,
) *App {
	return &App{
		generator:    generator,
		planRepo:     planRepo,
		listRepo:     listRepo,
		listStore:    listStore,
		metricsStore: metricsStore,
		cfg:          cfg,
	}
}

// ImportPlan stores a meal plan and returns its ID.
func (a *App) ImportPlan(ctx context.Context, plan *planner.MealPlan) (int64, error) {
	if plan.MealCount() == 0 {
		return 0, ErrEmptyPlan
	}
	id, err := a.planRepo.Save(ctx, plan)
	if err != nil {
		return 0, fmt.Errorf("failed to save meal plan: %w", err)
	}
	logger.FromContext(ctx).Info("meal plan imported",
		slog.Int64("plan_id", id),
		slog.String("user_id", plan.UserID),
		slog.Int("meals", plan.MealCount()))
	return id, nil
}

// GenerateShoppingList builds and stores the list of a saved plan owned by userID.
// A zero budget selects the configured default.
func (a *App) GenerateShoppingList(ctx context.Context, userID string, planID int64, budget float64) (*shopping.ShoppingList, error) {
	plan, err := a.planRepo.Get(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meal plan %d: %w", planID, err)
	}
	if plan.UserID != userID {
		return nil, fmt.Errorf("failed to load meal plan %d: %w", planID, shared.ErrNotFound)
	}
	return a.GenerateFromPlan(ctx, plan, budget)
}

// GenerateForLatestPlan builds the list of the most recent plan of a user.
func (a *App) GenerateForLatestPlan(ctx context.Context, userID string, budget float64) (*shopping.ShoppingList, error) {
	plan, err := a.planRepo.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest meal plan: %w", err)
	}
	return a.GenerateFromPlan(ctx, plan, budget)
}

// GenerateFromPlan builds, stores and optionally exports the list of plan.
// The plan does not need to be saved.
func (a *App) GenerateFromPlan(ctx context.Context, plan *planner.MealPlan, budget float64) (*shopping.ShoppingList, error) {
	ctx = logger.WithRunID(ctx, logger.NewRunID())
	log := logger.FromContext(ctx)

	list, err := a.generator.Generate(ctx, plan, a.resolveBudget(budget))
	if err != nil {
		return nil, err
	}

	if plan != nil && plan.ID > 0 {
		if err := a.listRepo.DeleteByMealPlanID(ctx, plan.ID); err != nil {
			log.Warn("failed to remove previous shopping lists", slog.Any("error", err))
		}
	}
	if err := a.listRepo.Save(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to save shopping list: %w", err)
	}

	if a.listStore != nil {
		path, err := a.listStore.Save(list)
		if err != nil {
			log.Warn("failed to export shopping list", slog.Any("error", err))
		} else {
			log.Info("shopping list exported", slog.String("path", path))
		}
	}
	return list, nil
}

// GetShoppingList returns a stored list, or shared.ErrNotFound.
func (a *App) GetShoppingList(ctx context.Context, id string) (*shopping.ShoppingList, error) {
	return a.listRepo.Get(ctx, id)
}

// LatestListForPlan returns the most recent stored list of a plan owned by
// userID, or shared.ErrNotFound.
func (a *App) LatestListForPlan(ctx context.Context, userID string, planID int64) (*shopping.ShoppingList, error) {
	plan, err := a.planRepo.Get(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meal plan %d: %w", planID, err)
	}
	if plan.UserID != userID {
		return nil, fmt.Errorf("failed to load meal plan %d: %w", planID, shared.ErrNotFound)
	}

	list, err := a.listRepo.GetByMealPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("no shopping list for meal plan %d: %w", planID, shared.ErrNotFound)
	}
	return list, nil
}

// TokenUsage returns the LLM tokens spent since the App was bootstrapped.
func (a *App) TokenUsage() shared.TokenUsage {
	if a.tokenUsage == nil {
		return shared.TokenUsage{}
	}
	return a.tokenUsage()
}

// DailyUsage returns token usage for the last N days.
func (a *App) DailyUsage(days int) ([]metrics.DailyUsage, error) {
	return a.metricsStore.GetDailyUsage(days)
}

// CleanupMetrics removes token usage records older than N days.
func (a *App) CleanupMetrics(days int) (int64, error) {
	return a.metricsStore.Cleanup(days)
}

func (a *App) resolveBudget(budget float64) float64 {
	if budget == 0 && a.cfg != nil {
		return a.cfg.DefaultWeeklyBudget
	}
	return budget
}
