package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ai-meal-shopper/internal/app"
	"ai-meal-shopper/internal/server"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show LLM token usage per day",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		a, cleanup, err := app.Bootstrap(cmd.Context(), cfg, app.Options{})
		if err != nil {
			return err
		}
		defer cleanup()

		usage, err := a.DailyUsage(days)
		if err != nil {
			return err
		}

		fmt.Printf("\n%s\n\n", color.New(color.Bold).Sprintf("LLM usage (last %d days)", days))
		if len(usage) == 0 {
			fmt.Println("  No data yet.")
			return nil
		}
		fmt.Printf("  %-12s %10s %12s %8s\n", "Date", "Prompt", "Completion", "Calls")
		for _, d := range usage {
			fmt.Printf("  %-12s %10s %12s %8d\n", d.Date,
				humanize.Comma(int64(d.TotalPrompt)), humanize.Comma(int64(d.TotalCompletion)), d.TotalExecution)
		}
		return nil
	},
}

var metricsCleanupCmd = &cobra.Command{
	Use:   "metrics-cleanup",
	Short: "Remove old token usage records",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		a, cleanup, err := app.Bootstrap(cmd.Context(), cfg, app.Options{})
		if err != nil {
			return err
		}
		defer cleanup()

		affected, err := a.CleanupMetrics(days)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := server.GenerateToken([]byte(cfg.JWTSecret), userID, ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	usageCmd.Flags().Int("days", 7, "Number of days to report")
	metricsCleanupCmd.Flags().Int("days", 30, "Keep records for the last N days")

	tokenCmd.Flags().String("user", "", "User ID placed in the token subject")
	tokenCmd.Flags().Duration("ttl", 30*24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(metricsCleanupCmd)
	rootCmd.AddCommand(tokenCmd)
}
