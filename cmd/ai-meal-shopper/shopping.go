package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ai-meal-shopper/internal/app"
	"ai-meal-shopper/internal/planner"
	"ai-meal-shopper/internal/shopping"
)

var shoppingCmd = &cobra.Command{
	Use:   "shopping",
	Short: "Generate a shopping list from a meal plan file",
	Long: `Generate a shopping list from a JSON or YAML meal plan file.

The plan must have a top-level "weeklyMeals" key. Each meal is sent to the
configured LLM for ingredient extraction; meals that fail are listed as
placeholders to check by hand.

Examples:
  ai-meal-shopper shopping --plan week.yaml
  ai-meal-shopper shopping --plan week.json --budget 80 --prices prices.yaml
  ai-meal-shopper shopping --plan week.json --user alice --save --export-dir lists`,
	RunE: func(cmd *cobra.Command, args []string) error {
		planPath, _ := cmd.Flags().GetString("plan")
		budget, _ := cmd.Flags().GetFloat64("budget")
		userID, _ := cmd.Flags().GetString("user")
		pricesPath, _ := cmd.Flags().GetString("prices")
		exportDir, _ := cmd.Flags().GetString("export-dir")
		save, _ := cmd.Flags().GetBool("save")
		top, _ := cmd.Flags().GetInt("top")

		plan, err := planner.LoadFile(planPath)
		if err != nil {
			return err
		}
		plan.UserID = userID

		ctx := cmd.Context()
		a, cleanup, err := app.Bootstrap(ctx, cfg, app.Options{PricesPath: pricesPath, ExportDir: exportDir})
		if err != nil {
			return err
		}
		defer cleanup()

		var list *shopping.ShoppingList
		if save {
			id, err := a.ImportPlan(ctx, plan)
			if err != nil {
				return err
			}
			fmt.Printf("%s meal plan #%d\n", color.GreenString("Saved"), id)
			list, err = a.GenerateShoppingList(ctx, userID, id, budget)
			if err != nil {
				return err
			}
		} else {
			list, err = a.GenerateFromPlan(ctx, plan, budget)
			if err != nil {
				return err
			}
		}

		if err := app.WriteShoppingList(os.Stdout, list, top); err != nil {
			return err
		}
		fmt.Printf("\nList ID: %s\n", list.ID)
		if usage := a.TokenUsage(); !usage.IsZero() {
			fmt.Printf("LLM tokens: %s (prompt %s, completion %s)\n",
				humanize.Comma(int64(usage.TotalTokens)),
				humanize.Comma(int64(usage.PromptTokens)),
				humanize.Comma(int64(usage.CompletionTokens)))
		}
		return nil
	},
}

var importPlanCmd = &cobra.Command{
	Use:   "import-plan",
	Short: "Store a meal plan file for later list generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		planPath, _ := cmd.Flags().GetString("plan")
		userID, _ := cmd.Flags().GetString("user")

		plan, err := planner.LoadFile(planPath)
		if err != nil {
			return err
		}
		plan.UserID = userID

		a, cleanup, err := app.Bootstrap(cmd.Context(), cfg, app.Options{})
		if err != nil {
			return err
		}
		defer cleanup()

		id, err := a.ImportPlan(cmd.Context(), plan)
		if err != nil {
			return err
		}
		fmt.Printf("%s meal plan #%d (%d meals) for user %q\n", color.GreenString("Imported"), id, plan.MealCount(), userID)
		return nil
	},
}

func init() {
	shoppingCmd.Flags().String("plan", "", "Meal plan file (JSON or YAML)")
	shoppingCmd.Flags().Float64("budget", 0, "Weekly budget (defaults to WEEKLY_BUDGET)")
	shoppingCmd.Flags().String("user", "cli", "User the plan and list belong to")
	shoppingCmd.Flags().String("prices", "", "Price table file mapping ingredient names to prices")
	shoppingCmd.Flags().String("export-dir", "", "Directory to export the list as JSON")
	shoppingCmd.Flags().Bool("save", false, "Store the meal plan before generating")
	shoppingCmd.Flags().Int("top", 5, "Number of categories in the breakdown (0 = all)")
	_ = shoppingCmd.MarkFlagRequired("plan")

	importPlanCmd.Flags().String("plan", "", "Meal plan file (JSON or YAML)")
	importPlanCmd.Flags().String("user", "", "User the plan belongs to")
	_ = importPlanCmd.MarkFlagRequired("plan")
	_ = importPlanCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(shoppingCmd)
	rootCmd.AddCommand(importPlanCmd)
}
