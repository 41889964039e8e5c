package shopping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"ai-meal-shopper/internal/logger"
	"ai-meal-shopper/internal/metrics"
	"ai-meal-shopper/internal/planner"

	"github.com/google/uuid"
)

// ErrInvalidBudget is returned by Generate for a budget that is not a
// positive finite number.
var ErrInvalidBudget = errors.New("weekly budget must be a positive finite number")

// Generator turns a meal plan into a budgeted shopping list.
type Generator struct {
	collector *Collector
	now       func() time.Time
}

// NewGenerator creates a Generator.
func NewGenerator(collector *Collector) *Generator {
	return &Generator{collector: collector, now: time.Now}
}

// Generate runs collection, merging and aggregation for plan. Extraction
// failures and empty plans never produce an error; they show up as
// placeholder items or an empty list.
func (g *Generator) Generate(ctx context.Context, plan *planner.MealPlan, weeklyBudget float64) (*ShoppingList, error) {
	if weeklyBudget <= 0 || math.IsNaN(weeklyBudget) || math.IsInf(weeklyBudget, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBudget, weeklyBudget)
	}

	if _, ok := logger.RunIDFromContext(ctx); !ok {
		ctx = logger.WithRunID(ctx, logger.NewRunID())
	}
	log := logger.FromContext(ctx)
	start := time.Now()

	candidates := g.collector.Collect(ctx, plan)
	items := Merge(candidates)
	summary := Aggregate(items, weeklyBudget)

	list := &ShoppingList{
		ID:           uuid.NewString(),
		WeeklyBudget: weeklyBudget,
		Items:        items,
		Summary:      summary,
		CreatedAt:    g.now().UTC(),
	}
	if plan != nil {
		list.UserID = plan.UserID
		list.MealPlanID = plan.ID
	}

	status := list.Budget()
	metrics.ListsGenerated.WithLabelValues(strconv.FormatBool(status.IsOverBudget)).Inc()
	metrics.ListCost.Observe(summary.TotalCost)
	metrics.ListItems.Observe(float64(len(items)))

	log.Info("shopping list generated",
		slog.String("list_id", list.ID),
		slog.Int("candidates", len(candidates)),
		slog.Int("items", len(items)),
		slog.Int("placeholders", len(list.Placeholders())),
		slog.Float64("total_cost", summary.TotalCost),
		slog.Float64("weekly_budget", weeklyBudget),
		slog.Bool("over_budget", status.IsOverBudget),
		slog.Duration("elapsed", time.Since(start)))

	return list, nil
}
