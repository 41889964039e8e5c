package app

import (
	"fmt"
	"io"
	"strings"

	"ai-meal-shopper/internal/shopping"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns a bucket or category key into a heading, e.g. "shared" -> "Shared".
func DisplayName(key string) string {
	return cases.Title(language.English).String(key)
}

// WriteShoppingList renders a human readable report of list to w.
// topN limits the category breakdown; zero shows every category.
func WriteShoppingList(w io.Writer, list *shopping.ShoppingList, topN int) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", cyan("=== SHOPPING LIST ==="))

	for _, group := range list.Summary.Buckets() {
		if len(group.Items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s %s\n", yellow(DisplayName(group.DayName)), gray(fmt.Sprintf("($%.2f)", group.TotalCost)))
		for _, item := range group.Items {
			if item.IsPlaceholder() {
				fmt.Fprintf(&b, "  %s %s\n", color.YellowString("?"), color.YellowString("%s (%s)", item.Name, item.Quantity))
				continue
			}
			fmt.Fprintf(&b, "  - %-28s %-14s $%6.2f  %s\n",
				item.Name, item.Quantity, item.EstimatedCost, gray(DisplayName(item.Category)))
		}
	}

	if len(list.Items) == 0 {
		fmt.Fprintf(&b, "\n%s\n", gray("No items."))
	}

	status := list.Budget()
	statusColor := color.New(color.FgGreen)
	if status.IsOverBudget {
		statusColor = color.New(color.FgRed, color.Bold)
	} else if status.UsagePercent >= 90 {
		statusColor = color.New(color.FgYellow)
	}

	fmt.Fprintf(&b, "\n%s\n", cyan("=== BUDGET ==="))
	fmt.Fprintf(&b, "  Total:     $%.2f / $%.2f (%d%%)\n", status.Total, status.Budget, status.UsagePercent)
	fmt.Fprintf(&b, "  Remaining: %s\n", statusColor.Sprintf("$%.2f", status.Remaining))
	if status.IsOverBudget {
		fmt.Fprintf(&b, "  %s\n", color.New(color.FgRed, color.Bold).Sprint("Over budget!"))
	}

	if breakdown := shopping.CategoryBreakdown(list.Items, topN); len(breakdown) > 0 {
		fmt.Fprintf(&b, "\n%s\n", cyan("=== TOP CATEGORIES ==="))
		for _, c := range breakdown {
			fmt.Fprintf(&b, "  %-12s $%.2f (%d items)\n", DisplayName(c.Category), c.Total, c.Items)
		}
	}

	if n := len(list.Placeholders()); n > 0 {
		fmt.Fprintf(&b, "\n%s\n", color.YellowString("%d meal(s) need a manual ingredient check.", n))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
