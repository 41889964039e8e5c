package planner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingWeeklyMeals is returned when a plan document has no weeklyMeals key.
var ErrMissingWeeklyMeals = errors.New("meal plan has no weeklyMeals")

// LoadFile reads a meal plan from a JSON or YAML file.
func LoadFile(path string) (*MealPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read meal plan file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	case ".json":
		return decodeJSON(data)
	default:
		return Decode(data)
	}
}

// Decode parses a meal plan document. JSON is assumed when the document
// starts with '{', YAML otherwise.
func Decode(data []byte) (*MealPlan, error) {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return decodeJSON(data)
	}
	return decodeYAML(data)
}

func decodeJSON(data []byte) (*MealPlan, error) {
	var plan MealPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal plan JSON: %w", err)
	}
	return Normalize(&plan)
}

func decodeYAML(data []byte) (*MealPlan, error) {
	var plan MealPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal plan YAML: %w", err)
	}
	return Normalize(&plan)
}

// Normalize lowercases day keys and rejects anything that is not a weekday.
func Normalize(plan *MealPlan) (*MealPlan, error) {
	if plan.WeeklyMeals == nil {
		return nil, ErrMissingWeeklyMeals
	}

	weekly := make(map[Day]DayMeals, len(plan.WeeklyMeals))
	for key, meals := range plan.WeeklyMeals {
		day, ok := ParseDay(string(key))
		if !ok {
			return nil, fmt.Errorf("unknown day %q in weeklyMeals", key)
		}
		weekly[day] = meals
	}
	plan.WeeklyMeals = weekly
	return plan, nil
}
