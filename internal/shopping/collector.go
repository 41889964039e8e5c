package shopping

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"ai-meal-shopper/internal/ingredient"
	"ai-meal-shopper/internal/logger"
	"ai-meal-shopper/internal/metrics"
	"ai-meal-shopper/internal/planner"

	"golang.org/x/sync/errgroup"
)

// IngredientExtractor returns the ingredients of a single meal.
type IngredientExtractor interface {
	ExtractIngredients(ctx context.Context, mealName, description string) ([]ingredient.Ingredient, error)
}

// CollectorOptions tunes a Collector. The zero value is valid.
type CollectorOptions struct {
	// Concurrency is the number of extractions in flight. Values below 2
	// run extractions one after another.
	Concurrency int
	// Estimator prices each ingredient. Defaults to HeuristicEstimator.
	Estimator CostEstimator
}

// Collector walks a meal plan and turns every meal into raw candidates.
type Collector struct {
	extractor   IngredientExtractor
	estimator   CostEstimator
	concurrency int
}

// NewCollector creates a Collector.
func NewCollector(extractor IngredientExtractor, opts CollectorOptions) *Collector {
	c := &Collector{
		extractor:   extractor,
		estimator:   opts.Estimator,
		concurrency: opts.Concurrency,
	}
	if c.estimator == nil {
		c.estimator = HeuristicEstimator{}
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	return c
}

// mealOccurrence is one populated slot of the plan.
type mealOccurrence struct {
	key   string
	label string
	meal  planner.MealItem
}

type extraction struct {
	ingredients []ingredient.Ingredient
	err         error
}

// Collect extracts the ingredients of every meal in plan order. A failed
// meal contributes a single placeholder candidate; it never aborts the run.
func (c *Collector) Collect(ctx context.Context, plan *planner.MealPlan) []RawCandidate {
	log := logger.FromContext(ctx)

	if plan == nil || len(plan.WeeklyMeals) == 0 {
		log.Warn("meal plan has no weeklyMeals, nothing to collect")
		return []RawCandidate{}
	}

	occurrences := planOccurrences(plan)

	// Meals with the same identity are extracted once per run.
	slot := make(map[string]int, len(occurrences))
	var unique []mealOccurrence
	for _, occ := range occurrences {
		if _, ok := slot[occ.key]; ok {
			metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeMemo).Inc()
			continue
		}
		slot[occ.key] = len(unique)
		unique = append(unique, occ)
	}

	results := make([]extraction, len(unique))
	if c.concurrency == 1 {
		for i, occ := range unique {
			results[i] = c.extract(ctx, occ)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(c.concurrency)
		for i, occ := range unique {
			i, occ := i, occ
			g.Go(func() error {
				results[i] = c.extract(ctx, occ)
				return nil
			})
		}
		_ = g.Wait()
	}

	candidates := make([]RawCandidate, 0, len(occurrences)*4)
	for _, occ := range occurrences {
		res := results[slot[occ.key]]
		if res.err != nil {
			log.Warn("ingredient extraction failed, using placeholder",
				slog.String("meal", occ.meal.Name),
				slog.String("label", occ.label),
				slog.Any("error", res.err))
			candidates = append(candidates, placeholderCandidate(occ))
			continue
		}
		for _, ing := range res.ingredients {
			candidates = append(candidates, c.candidate(ing, occ.label))
		}
	}

	log.Debug("collected ingredient candidates",
		slog.Int("meals", len(occurrences)),
		slog.Int("extractions", len(unique)),
		slog.Int("candidates", len(candidates)))
	return candidates
}

func (c *Collector) extract(ctx context.Context, occ mealOccurrence) extraction {
	start := time.Now()
	ingredients, err := c.extractor.ExtractIngredients(ctx, occ.meal.Name, occ.meal.Description)
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())

	if err == nil {
		ingredients = nonBlank(ingredients)
		if len(ingredients) == 0 {
			err = fmt.Errorf("no ingredients returned for %q", occ.meal.Name)
		}
	}
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return extraction{err: err}
	}
	metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return extraction{ingredients: ingredients}
}

func (c *Collector) candidate(ing ingredient.Ingredient, label string) RawCandidate {
	name := strings.TrimSpace(ing.Name)
	return RawCandidate{
		Name:          capitalize(name),
		Quantity:      strings.TrimSpace(ing.Quantity),
		DayLabel:      label,
		EstimatedCost: c.estimator.Estimate(name),
		Category:      Classify(name),
	}
}

func placeholderCandidate(occ mealOccurrence) RawCandidate {
	return RawCandidate{
		Name:          placeholderPrefix + occ.meal.Name,
		Quantity:      PlaceholderQuantity,
		DayLabel:      occ.label,
		EstimatedCost: 0,
		Category:      CategoryOther,
	}
}

// planOccurrences lists the non-blank meals of the plan in day and slot order.
func planOccurrences(plan *planner.MealPlan) []mealOccurrence {
	var out []mealOccurrence
	for _, day := range planner.Days {
		meals, ok := plan.WeeklyMeals[day]
		if !ok {
			continue
		}
		for _, s := range planner.Slots {
			meal := meals.Meal(s)
			if meal.IsBlank() {
				continue
			}
			out = append(out, mealOccurrence{
				key:   meal.Name + "|" + string(day) + "|" + string(s),
				label: day.Title() + " " + s.Label(),
				meal:  *meal,
			})
		}
		for i, snack := range meals.Snacks {
			if snack.IsBlank() {
				continue
			}
			out = append(out, mealOccurrence{
				key:   fmt.Sprintf("%s|snack|%d", snack.Name, i),
				label: fmt.Sprintf("%s Snack %d", day.Title(), i+1),
				meal:  snack,
			})
		}
	}
	return out
}

func nonBlank(in []ingredient.Ingredient) []ingredient.Ingredient {
	out := in[:0:0]
	for _, ing := range in {
		if strings.TrimSpace(ing.Name) != "" {
			out = append(out, ing)
		}
	}
	return out
}

// capitalize upper-cases the first letter and leaves the rest untouched.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
