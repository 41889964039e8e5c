package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-meal-shopper/internal/shopping"
)

func TestListStore(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewListStore(filepath.Join(tempDir, "exports"))
	if err != nil {
		t.Fatalf("Failed to create ListStore: %v", err)
	}

	items := []shopping.ShoppingItem{
		{Name: "Oats", Quantity: "1 cup", EstimatedCost: 3.2, Category: "grains", MealAssociations: []string{"Monday Breakfast"}},
	}
	first := &shopping.ShoppingList{
		ID:           "a1",
		MealPlanID:   5,
		WeeklyBudget: 100,
		Items:        items,
		Summary:      shopping.Aggregate(items, 100),
		CreatedAt:    time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC),
	}
	key := ListKey(first)

	var firstPath string

	t.Run("Save", func(t *testing.T) {
		path, err := store.Save(first)
		if err != nil {
			t.Fatalf("Failed to save list: %v", err)
		}
		firstPath = path
		if filepath.Base(path) != "plan-5_2024-04-01T09-30-00Z.json" {
			t.Errorf("Unexpected export file name '%s'", filepath.Base(path))
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Expected file '%s' to be readable: %v", path, err)
		}
		var doc exportDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("Failed to decode export: %v", err)
		}
		if doc.List == nil || doc.List.ID != "a1" || len(doc.List.Items) != 1 || doc.List.Items[0].Name != "Oats" {
			t.Errorf("Unexpected exported list: %+v", doc.List)
		}
		if doc.Budget.Total != 3.2 || doc.Budget.Budget != 100 {
			t.Errorf("Unexpected exported budget: %+v", doc.Budget)
		}
		if len(doc.Categories) != 1 || doc.Categories[0].Category != "grains" {
			t.Errorf("Unexpected exported categories: %+v", doc.Categories)
		}
	})

	t.Run("SaveReplacesStaleVersion", func(t *testing.T) {
		second := *first
		second.ID = "a2"
		second.CreatedAt = first.CreatedAt.Add(time.Hour)
		path, err := store.Save(&second)
		if err != nil {
			t.Fatalf("Failed to save list: %v", err)
		}
		if _, err := os.Stat(firstPath); !os.IsNotExist(err) {
			t.Error("Expected the older version to be removed")
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected the new version to exist: %v", err)
		}

		matches, err := filepath.Glob(filepath.Join(tempDir, "exports", key+"_*.json"))
		if err != nil {
			t.Fatalf("Failed to glob exports: %v", err)
		}
		if len(matches) != 1 {
			t.Errorf("Expected exactly one version of '%s', got %d", key, len(matches))
		}
	})

	t.Run("RemoveStaleVersions", func(t *testing.T) {
		if err := store.RemoveStaleVersions(key); err != nil {
			t.Fatalf("Failed to remove versions: %v", err)
		}
		matches, _ := filepath.Glob(filepath.Join(tempDir, "exports", key+"_*.json"))
		if len(matches) != 0 {
			t.Errorf("Expected no versions left, got %v", matches)
		}
	})

	t.Run("KeyWithoutPlan", func(t *testing.T) {
		if got := ListKey(&shopping.ShoppingList{ID: "xyz"}); got != "list-xyz" {
			t.Errorf("Expected key 'list-xyz', got '%s'", got)
		}
	})
}
