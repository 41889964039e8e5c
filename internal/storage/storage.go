package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-meal-shopper/internal/shopping"
)

// ListStore provides file-based export of shopping lists.
type ListStore struct {
	basePath string
}

// exportDocument is the on-disk form of an exported list.
type exportDocument struct {
	List       *shopping.ShoppingList   `json:"list"`
	Budget     shopping.BudgetStatus    `json:"budget"`
	Categories []shopping.CategorySpend `json:"categories"`
}

// NewListStore creates a new ListStore and ensures the base directory exists.
func NewListStore(basePath string) (*ListStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &ListStore{basePath: basePath}, nil
}

// ListKey names the file family of a list: one per meal plan, or one per
// list when it was generated from an unsaved plan.
func ListKey(list *shopping.ShoppingList) string {
	if list.MealPlanID > 0 {
		return fmt.Sprintf("plan-%d", list.MealPlanID)
	}
	return "list-" + list.ID
}

// sanitizeTimestamp makes the timestamp safe for filenames.
func sanitizeTimestamp(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format(time.RFC3339), ":", "-")
}

func (s *ListStore) versionedPath(key string, createdAt time.Time) string {
	filename := fmt.Sprintf("%s_%s.json", key, sanitizeTimestamp(createdAt))
	return filepath.Join(s.basePath, filename)
}

// Save writes the list and replaces older versions of the same key.
// It returns the path of the written file.
func (s *ListStore) Save(list *shopping.ShoppingList) (string, error) {
	data, err := json.MarshalIndent(exportDocument{
		List:       list,
		Budget:     list.Budget(),
		Categories: shopping.CategoryBreakdown(list.Items, 0),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal shopping list: %w", err)
	}

	key := ListKey(list)
	if err := s.RemoveStaleVersions(key); err != nil {
		return "", err
	}

	filePath := s.versionedPath(key, list.CreatedAt)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write shopping list file: %w", err)
	}
	return filePath, nil
}

// RemoveStaleVersions removes all files associated with a key.
func (s *ListStore) RemoveStaleVersions(key string) error {
	matches, err := filepath.Glob(filepath.Join(s.basePath, key+"_*.json"))
	if err != nil {
		return fmt.Errorf("failed to glob stale files: %w", err)
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to remove stale file %s: %w", match, err)
		}
	}
	return nil
}
