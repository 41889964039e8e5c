package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ai-meal-shopper/internal/config"
	"ai-meal-shopper/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ai-meal-shopper",
	Short: "Turn weekly meal plans into budgeted shopping lists",
	Long: `ai-meal-shopper extracts the ingredients of every meal in a weekly plan
with an LLM, merges them into one shopping list, estimates costs and checks
the result against a weekly budget.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.NewFromEnv()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = c
		logger.Setup(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
