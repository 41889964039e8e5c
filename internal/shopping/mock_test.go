package shopping

import (
	"context"
	"errors"
	"sync"

	"ai-meal-shopper/internal/ingredient"
)

// mockExtractor answers by meal name and counts calls.
type mockExtractor struct {
	mu      sync.Mutex
	results map[string][]ingredient.Ingredient
	errs    map[string]error
	calls   map[string]int
}

func newMockExtractor() *mockExtractor {
	return &mockExtractor{
		results: map[string][]ingredient.Ingredient{},
		errs:    map[string]error{},
		calls:   map[string]int{},
	}
}

func (m *mockExtractor) on(meal string, ings ...ingredient.Ingredient) *mockExtractor {
	m.results[meal] = ings
	return m
}

func (m *mockExtractor) fail(meal string, err error) *mockExtractor {
	m.errs[meal] = err
	return m
}

func (m *mockExtractor) ExtractIngredients(ctx context.Context, mealName, description string) ([]ingredient.Ingredient, error) {
	m.mu.Lock()
	m.calls[mealName]++
	m.mu.Unlock()

	if err := m.errs[mealName]; err != nil {
		return nil, err
	}
	if ings, ok := m.results[mealName]; ok {
		return ings, nil
	}
	return nil, errors.New("unknown meal")
}

func (m *mockExtractor) callCount(meal string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[meal]
}

// fixedEstimator prices everything from a map, defaulting to 1.
type fixedEstimator map[string]float64

func (f fixedEstimator) Estimate(name string) float64 {
	if v, ok := f[name]; ok {
		return v
	}
	return 1
}
