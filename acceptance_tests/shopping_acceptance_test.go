package acceptance_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-meal-shopper/internal/app"
	"ai-meal-shopper/internal/config"
	"ai-meal-shopper/internal/database"
	"ai-meal-shopper/internal/ingredient"
	"ai-meal-shopper/internal/llm"
	"ai-meal-shopper/internal/metrics"
	"ai-meal-shopper/internal/planner"
	"ai-meal-shopper/internal/server"
	"ai-meal-shopper/internal/shared"
	"ai-meal-shopper/internal/shopping"
	"ai-meal-shopper/internal/storage"
)

const jwtSecret = "acceptance-secret"

// --- Mock LLM Client ---
type mockLLMClient struct {
	mu    sync.Mutex
	calls int
}

func (m *mockLLMClient) GenerateContent(_ context.Context, prompt string) (llm.ContentResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	usage := shared.TokenUsage{PromptTokens: 120, CompletionTokens: 30, TotalTokens: 150, Model: "mock"}
	switch {
	case strings.Contains(prompt, "Grilled Chicken"):
		return llm.ContentResponse{
			Content: `{"ingredients":[{"name":"chicken breast","quantity":"200g"},{"name":"rice","quantity":"100g"}]}`,
			Usage:   usage,
		}, nil
	case strings.Contains(prompt, "Fried Rice"):
		return llm.ContentResponse{
			Content: "```json\n{\"ingredients\":[{\"name\":\"rice\",\"quantity\":\"150g\"},{\"name\":\"egg\",\"quantity\":\"2\"}]}\n```",
			Usage:   usage,
		}, nil
	}
	return llm.ContentResponse{}, errors.New("model overloaded")
}

func (m *mockLLMClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type listResponse struct {
	shopping.ShoppingList
	Budget shopping.BudgetStatus `json:"budget"`
}

type harness struct {
	handler   http.Handler
	llm       *mockLLMClient
	metrics   *metrics.Store
	exportDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewDB(filepath.Join(dir, "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	exportDir := filepath.Join(dir, "lists")
	listStore, err := storage.NewListStore(exportDir)
	require.NoError(t, err)

	prices, err := shopping.NewPriceTable(map[string]float64{"chicken": 5, "rice": 2, "egg": 3}, nil)
	require.NoError(t, err)

	mock := &mockLLMClient{}
	metricsStore := metrics.NewStore(db.SQL)
	collector := shopping.NewCollector(ingredient.NewExtractor(mock, metricsStore), shopping.CollectorOptions{
		Concurrency: 3,
		Estimator:   prices,
	})

	a := app.NewApp(
		shopping.NewGenerator(collector),
		planner.NewPlanRepository(db.SQL),
		shopping.NewRepository(db.SQL),
		listStore,
		metricsStore,
		&config.Config{DefaultWeeklyBudget: 20},
	)

	return &harness{
		handler:   server.NewServer("0", a, jwtSecret, nil).Handler(),
		llm:       mock,
		metrics:   metricsStore,
		exportDir: exportDir,
	}
}

func (h *harness) do(t *testing.T, user, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	token, err := server.GenerateToken([]byte(jwtSecret), user, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func weekPlan() map[string]interface{} {
	return map[string]interface{}{
		"week_start": "2025-01-06",
		"weeklyMeals": map[string]interface{}{
			"monday": map[string]interface{}{
				"lunch": map[string]string{"name": "Grilled Chicken", "description": "<p>Chicken with <b>rice</b></p><script>alert(1)</script>"},
			},
			"Tuesday": map[string]interface{}{
				"dinner": map[string]string{"name": "Fried Rice", "description": "Rice and egg"},
			},
			"wednesday": map[string]interface{}{
				"dinner": map[string]string{"name": "Mystery Stew", "description": "Whatever is left"},
				"snacks": []map[string]string{{"name": "", "description": "skipped"}},
			},
		},
	}
}

func TestShoppingListLifecycle(t *testing.T) {
	h := newHarness(t)

	// 1. Import the plan
	rec := h.do(t, "alice", http.MethodPost, "/api/v1/meal-plans", weekPlan())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var imported struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&imported))
	require.Positive(t, imported.ID)

	// 2. Generate with a tight budget
	rec = h.do(t, "alice", http.MethodPost, fmt.Sprintf("/api/v1/meal-plans/%d/shopping-list", imported.ID),
		map[string]float64{"weekly_budget": 9})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first listResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&first))

	assert.Equal(t, 3, h.llm.callCount())
	assert.Equal(t, imported.ID, first.MealPlanID)
	assert.Equal(t, "alice", first.UserID)

	byName := make(map[string]shopping.ShoppingItem)
	for _, it := range first.Items {
		byName[it.Name] = it
	}
	require.Len(t, byName, 4)
	assert.Equal(t, "250", byName["Rice"].Quantity)
	assert.Equal(t, []string{"Monday Lunch", "Tuesday Dinner"}, byName["Rice"].MealAssociations)
	assert.Equal(t, shopping.CategoryMeat, byName["Chicken breast"].Category)
	placeholder, ok := byName["Ingredients for Mystery Stew"]
	require.True(t, ok, "failed meal should become a placeholder")
	assert.True(t, placeholder.IsPlaceholder())

	assert.InDelta(t, 10.0, first.Budget.Total, 1e-9)
	assert.True(t, first.Budget.IsOverBudget)
	assert.InDelta(t, 7.0, first.Summary.ByDay["monday"].TotalCost, 1e-9)
	assert.InDelta(t, 3.0, first.Summary.ByDay["tuesday"].TotalCost, 1e-9)

	// 3. Regenerate with the default budget; the old list is replaced
	rec = h.do(t, "alice", http.MethodPost, fmt.Sprintf("/api/v1/meal-plans/%d/shopping-list", imported.ID), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var second listResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&second))

	assert.Equal(t, 6, h.llm.callCount(), "memo must not outlive a single generation")
	assert.Equal(t, 20.0, second.WeeklyBudget)
	assert.False(t, second.Budget.IsOverBudget)
	assert.Equal(t, 50, second.Budget.UsagePercent)

	assert.Equal(t, http.StatusNotFound, h.do(t, "alice", http.MethodGet, "/api/v1/shopping-lists/"+first.ID, nil).Code)
	assert.Equal(t, http.StatusOK, h.do(t, "alice", http.MethodGet, "/api/v1/shopping-lists/"+second.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, "bob", http.MethodGet, "/api/v1/shopping-lists/"+second.ID, nil).Code)

	latestPath := fmt.Sprintf("/api/v1/meal-plans/%d/shopping-list", imported.ID)
	rec = h.do(t, "alice", http.MethodGet, latestPath, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var latest listResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&latest))
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, http.StatusNotFound, h.do(t, "bob", http.MethodGet, latestPath, nil).Code)

	// 4. Only the latest export is kept
	entries, err := os.ReadDir(h.exportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), fmt.Sprintf("plan-%d_", imported.ID)))

	// 5. Token usage was recorded for successful extractions only
	usage, err := h.metrics.GetDailyUsage(1)
	require.NoError(t, err)
	var execs, prompt int
	for _, d := range usage {
		execs += d.TotalExecution
		prompt += d.TotalPrompt
	}
	assert.Equal(t, 4, execs)
	assert.Equal(t, 480, prompt)
}

func TestInlinePlanAndOwnership(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, "alice", http.MethodPost, "/api/v1/meal-plans", weekPlan())
	require.Equal(t, http.StatusCreated, rec.Code)
	var imported struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&imported))

	// Another user cannot generate from alice's plan.
	rec = h.do(t, "bob", http.MethodPost, fmt.Sprintf("/api/v1/meal-plans/%d/shopping-list", imported.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, h.llm.callCount())

	rec = h.do(t, "bob", http.MethodPost, "/api/v1/shopping-lists", map[string]interface{}{
		"weekly_budget": 50,
		"plan":          weekPlan(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var list listResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, "bob", list.UserID)
	assert.Zero(t, list.MealPlanID)
	assert.Len(t, list.Items, 4)

	entries, err := os.ReadDir(h.exportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "list-"+list.ID+"_"))
}
