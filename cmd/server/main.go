package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-meal-shopper/internal/app"
	"ai-meal-shopper/internal/config"
	"ai-meal-shopper/internal/logger"
	"ai-meal-shopper/internal/server"
	"ai-meal-shopper/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// 2. Database, LLM client and services
	application, cleanup, err := app.Bootstrap(ctx, cfg, app.Options{})
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// 3. Optional Telegram bot
	var webhook http.Handler
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg, application)
		if err != nil {
			slog.Error("Failed to initialize Telegram Bot", "error", err)
			os.Exit(1)
		}
		webhook = bot.WebhookHandler()
	}

	// 4. Start Server with Graceful Shutdown
	srv := server.NewServer(cfg.Port, application, cfg.JWTSecret, webhook)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
