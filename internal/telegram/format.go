package telegram

import (
	"fmt"
	"strings"

	"ai-meal-shopper/internal/app"
	"ai-meal-shopper/internal/metrics"
	"ai-meal-shopper/internal/shopping"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escapeMarkdown escapes user supplied text for Telegram's legacy Markdown.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func formatShoppingListMarkdown(list *shopping.ShoppingList) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n")

	for _, group := range list.Summary.Buckets() {
		if len(group.Items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n*%s* ($%.2f)\n", app.DisplayName(group.DayName), group.TotalCost))
		for _, item := range group.Items {
			if item.IsPlaceholder() {
				sb.WriteString(fmt.Sprintf("❓ %s (%s)\n", escapeMarkdown(item.Name), item.Quantity))
				continue
			}
			sb.WriteString(fmt.Sprintf("• %s: %s, $%.2f\n", escapeMarkdown(item.Name), escapeMarkdown(item.Quantity), item.EstimatedCost))
		}
	}
	if len(list.Items) == 0 {
		sb.WriteString("\n_No items._\n")
	}

	status := list.Budget()
	sb.WriteString(fmt.Sprintf("\n💰 *Budget:* $%.2f / $%.2f (%d%%)\n", status.Total, status.Budget, status.UsagePercent))
	if status.IsOverBudget {
		sb.WriteString(fmt.Sprintf("⚠️ *Over budget* by $%.2f\n", -status.Remaining))
	} else {
		sb.WriteString(fmt.Sprintf("Remaining: $%.2f\n", status.Remaining))
	}

	if breakdown := shopping.CategoryBreakdown(list.Items, 3); len(breakdown) > 0 {
		sb.WriteString("\n📊 *Top categories*\n")
		for _, c := range breakdown {
			sb.WriteString(fmt.Sprintf("• %s: $%.2f (%d items)\n", app.DisplayName(c.Category), c.Total, c.Items))
		}
	}

	if n := len(list.Placeholders()); n > 0 {
		sb.WriteString(fmt.Sprintf("\n❓ %d meal(s) need a manual ingredient check.\n", n))
	}
	return sb.String()
}

func formatMetricsMarkdown(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %s (Alloc) / %s (Sys)\n", health.Alloc, health.Sys))
	sb.WriteString(fmt.Sprintf("• GC cycles: %d\n", health.NumGC))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}

// splitMessage cuts text at line boundaries into chunks of at most limit
// bytes. A single line longer than limit is cut hard.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
			parts = append(parts, line[:limit])
			line = line[limit:]
		}
		if cur.Len()+len(line) > limit {
			parts = append(parts, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}
