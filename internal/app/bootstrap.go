package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ai-meal-shopper/internal/config"
	"ai-meal-shopper/internal/database"
	"ai-meal-shopper/internal/ingredient"
	"ai-meal-shopper/internal/llm"
	"ai-meal-shopper/internal/metrics"
	"ai-meal-shopper/internal/planner"
	"ai-meal-shopper/internal/shopping"
	"ai-meal-shopper/internal/storage"
)

// Options selects the optional parts of Bootstrap.
type Options struct {
	// PricesPath is a YAML or JSON price table. Empty uses the heuristic estimator.
	PricesPath string
	// ExportDir enables JSON export of generated lists. Falls back to cfg.ExportDir.
	ExportDir string
}

// Bootstrap opens the database, creates the LLM client and wires an App.
// The returned cleanup function releases everything that was opened.
func Bootstrap(ctx context.Context, cfg *config.Config, opts Options) (*App, func(), error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	textGen, closeGen, err := llm.NewTextGenerator(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize %s client: %w", cfg.LLMProvider, err)
	}

	cleanup := func() {
		if err := closeGen(); err != nil {
			slog.Warn("failed to close LLM client", "error", err)
		}
		if err := db.Close(); err != nil {
			slog.Warn("failed to close database", "error", err)
		}
	}

	estimator, err := NewEstimator(cfg, opts.PricesPath)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = cfg.ExportDir
	}
	var listStore *storage.ListStore
	if exportDir != "" {
		if listStore, err = storage.NewListStore(exportDir); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	metricsStore := metrics.NewStore(db.SQL)
	extractor := ingredient.NewExtractor(textGen, metricsStore)
	collector := shopping.NewCollector(extractor, shopping.CollectorOptions{
		Concurrency: cfg.ExtractorConcurrency,
		Estimator:   estimator,
	})

	a := NewApp(
		shopping.NewGenerator(collector),
		planner.NewPlanRepository(db.SQL),
		shopping.NewRepository(db.SQL),
		listStore,
		metricsStore,
		cfg,
	)
	a.tokenUsage = extractor.Usage
	return a, cleanup, nil
}

// NewEstimator builds the cost estimator selected by the configuration:
// the heuristic estimator, optionally jittered, behind an optional price table.
func NewEstimator(cfg *config.Config, pricesPath string) (shopping.CostEstimator, error) {
	var est shopping.CostEstimator = shopping.HeuristicEstimator{}
	if cfg.CostJitter {
		est = shopping.NewJitterEstimator(est, time.Now().UnixNano())
	}
	if pricesPath == "" {
		return est, nil
	}

	table, err := shopping.LoadPriceTable(pricesPath, est)
	if err != nil {
		return nil, fmt.Errorf("failed to load price table: %w", err)
	}
	return table, nil
}
