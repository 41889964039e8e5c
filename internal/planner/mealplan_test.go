package planner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotLabel(t *testing.T) {
	assert.Equal(t, "Breakfast", Breakfast.Label())
	assert.Equal(t, "Pre-Workout", PreWorkout.Label())
	assert.Equal(t, "Post-Workout", PostWorkout.Label())
	assert.Equal(t, "Monday", Monday.Title())
}

func TestParseDay(t *testing.T) {
	d, ok := ParseDay(" Wednesday ")
	assert.True(t, ok)
	assert.Equal(t, Wednesday, d)

	_, ok = ParseDay("funday")
	assert.False(t, ok)
}

func TestMealCount(t *testing.T) {
	plan := &MealPlan{WeeklyMeals: map[Day]DayMeals{
		Monday: {
			Breakfast: &MealItem{Name: "Oats", Description: "Oats with milk"},
			Lunch:     &MealItem{Name: "Salad", Description: "  "},
			Snacks:    []MealItem{{Name: "Apple", Description: "One apple"}},
		},
		Friday: {Dinner: &MealItem{Name: "Fish", Description: "Baked cod"}},
	}}
	assert.Equal(t, 3, plan.MealCount())

	var nilPlan *MealPlan
	assert.Equal(t, 0, nilPlan.MealCount())
}

func TestDecode(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		plan, err := Decode([]byte(`{"weeklyMeals": {"Monday": {"breakfast": {"name": "Oats", "description": "Rolled oats"}, "snacks": [{"name": "Nuts", "description": "Almonds"}]}}}`))
		require.NoError(t, err)
		require.Contains(t, plan.WeeklyMeals, Monday)
		assert.Equal(t, "Oats", plan.WeeklyMeals[Monday].Breakfast.Name)
		assert.Len(t, plan.WeeklyMeals[Monday].Snacks, 1)
	})

	t.Run("YAML", func(t *testing.T) {
		doc := `
weeklyMeals:
  tuesday:
    pre_workout:
      name: Banana
      description: One ripe banana
    dinner:
      name: Chicken and rice
      description: Grilled chicken breast with rice
`
		plan, err := Decode([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, "Banana", plan.WeeklyMeals[Tuesday].PreWorkout.Name)
		assert.Equal(t, 2, plan.MealCount())
	})

	t.Run("MissingWeeklyMeals", func(t *testing.T) {
		_, err := Decode([]byte(`{"plan": []}`))
		assert.True(t, errors.Is(err, ErrMissingWeeklyMeals))
	})

	t.Run("UnknownDay", func(t *testing.T) {
		_, err := Decode([]byte(`{"weeklyMeals": {"someday": {}}}`))
		assert.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yml")
	require.NoError(t, os.WriteFile(path, []byte("weeklyMeals:\n  sunday:\n    lunch:\n      name: Soup\n      description: Lentil soup\n"), 0644))

	plan, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Soup", plan.WeeklyMeals[Sunday].Lunch.Name)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
