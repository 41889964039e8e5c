package planner

import (
	"strings"
	"time"
)

// Day is a lowercase weekday name used as a key of MealPlan.WeeklyMeals.
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Days lists the weekdays in plan order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDay accepts a weekday name in any case.
func ParseDay(s string) (Day, bool) {
	d := Day(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Days {
		if d == known {
			return d, true
		}
	}
	return "", false
}

// Title returns the capitalized day name, e.g. "Monday".
func (d Day) Title() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

// Slot is a named meal position within a day.
type Slot string

const (
	Breakfast   Slot = "breakfast"
	PreWorkout  Slot = "pre_workout"
	Lunch       Slot = "lunch"
	PostWorkout Slot = "post_workout"
	Dinner      Slot = "dinner"
	Evening     Slot = "evening"
)

// Slots lists the single-meal slots of a day in plan order. Snacks follow them.
var Slots = []Slot{Breakfast, PreWorkout, Lunch, PostWorkout, Dinner, Evening}

// Label returns the display form of the slot, e.g. "Pre-Workout".
func (s Slot) Label() string {
	parts := strings.Split(string(s), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}

// MealItem is a single meal of the plan.
type MealItem struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Calories    int    `json:"calories,omitempty" yaml:"calories,omitempty"`
}

// IsBlank reports whether the meal lacks a name or a description.
func (m *MealItem) IsBlank() bool {
	return m == nil || strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Description) == ""
}

// DayMeals holds the meals of one day.
type DayMeals struct {
	Breakfast   *MealItem  `json:"breakfast,omitempty" yaml:"breakfast,omitempty"`
	PreWorkout  *MealItem  `json:"pre_workout,omitempty" yaml:"pre_workout,omitempty"`
	Lunch       *MealItem  `json:"lunch,omitempty" yaml:"lunch,omitempty"`
	PostWorkout *MealItem  `json:"post_workout,omitempty" yaml:"post_workout,omitempty"`
	Dinner      *MealItem  `json:"dinner,omitempty" yaml:"dinner,omitempty"`
	Evening     *MealItem  `json:"evening,omitempty" yaml:"evening,omitempty"`
	Snacks      []MealItem `json:"snacks,omitempty" yaml:"snacks,omitempty"`
}

// Meal returns the meal in the given slot, or nil.
func (d DayMeals) Meal(slot Slot) *MealItem {
	switch slot {
	case Breakfast:
		return d.Breakfast
	case PreWorkout:
		return d.PreWorkout
	case Lunch:
		return d.Lunch
	case PostWorkout:
		return d.PostWorkout
	case Dinner:
		return d.Dinner
	case Evening:
		return d.Evening
	}
	return nil
}

// MealPlan represents a full weekly meal plan.
type MealPlan struct {
	ID          int64            `json:"id,omitempty" yaml:"-"` // Database ID for referencing
	UserID      string           `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	WeekStart   time.Time        `json:"week_start,omitempty" yaml:"week_start,omitempty"`
	WeeklyMeals map[Day]DayMeals `json:"weeklyMeals" yaml:"weeklyMeals"`
	CreatedAt   time.Time        `json:"created_at,omitempty" yaml:"-"`
}

// MealCount returns the number of non-blank meals in the plan.
func (p *MealPlan) MealCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, day := range Days {
		meals, ok := p.WeeklyMeals[day]
		if !ok {
			continue
		}
		for _, slot := range Slots {
			if !meals.Meal(slot).IsBlank() {
				n++
			}
		}
		for i := range meals.Snacks {
			if !meals.Snacks[i].IsBlank() {
				n++
			}
		}
	}
	return n
}
