package shopping

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// leadingNumber matches the numeric prefix of a quantity such as "200g" or "1.5 cups".
var leadingNumber = regexp.MustCompile(`^\s*[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Merge folds candidates into unique items keyed by case-folded name.
// The first occurrence of a name seeds the item; later ones add their
// day label, add up numeric quantities and average the cost pairwise.
func Merge(candidates []RawCandidate) []ShoppingItem {
	index := make(map[string]int, len(candidates))
	items := make([]ShoppingItem, 0, len(candidates))

	for _, c := range candidates {
		key := strings.ToLower(c.Name)
		i, seen := index[key]
		if !seen {
			index[key] = len(items)
			item := ShoppingItem{
				Name:             c.Name,
				Quantity:         c.Quantity,
				EstimatedCost:    c.EstimatedCost,
				Category:         c.Category,
				MealAssociations: []string{},
			}
			if c.DayLabel != "" {
				item.MealAssociations = append(item.MealAssociations, c.DayLabel)
			}
			items = append(items, item)
			continue
		}

		item := &items[i]
		if c.DayLabel != "" && !slices.Contains(item.MealAssociations, c.DayLabel) {
			item.MealAssociations = append(item.MealAssociations, c.DayLabel)
		}
		item.Quantity = mergeQuantity(item.Quantity, c.Quantity)
		// TODO: replace the pairwise average with a per-occurrence mean once
		// stored lists no longer need to match earlier totals.
		item.EstimatedCost = (item.EstimatedCost + c.EstimatedCost) / 2
	}
	return items
}

// mergeQuantity adds the leading numbers of both quantities. Units are
// dropped from the sum. When either side has no leading number the
// incoming quantity replaces the existing one.
func mergeQuantity(existing, incoming string) string {
	a, okA := parseLeadingNumber(existing)
	b, okB := parseLeadingNumber(incoming)
	if !okA || !okB {
		return incoming
	}
	return strconv.FormatFloat(a+b, 'f', -1, 64)
}

func parseLeadingNumber(s string) (float64, bool) {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
