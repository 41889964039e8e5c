package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ai-meal-shopper/internal/app"
	"ai-meal-shopper/internal/config"
	"ai-meal-shopper/internal/logger"
	"ai-meal-shopper/internal/metrics"
	"ai-meal-shopper/internal/planner"
	"ai-meal-shopper/internal/shared"
	"ai-meal-shopper/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLen stays below Telegram's 4096 character limit.
const maxMessageLen = 4000

const helpText = "🛒 *Meal Shopper*\n\n" +
	"Send me a meal plan as JSON (with a `weeklyMeals` key) to save it.\n" +
	"/shopping [budget] builds the shopping list of your latest plan."

// Service is the application surface used by the bot.
type Service interface {
	ImportPlan(ctx context.Context, plan *planner.MealPlan) (int64, error)
	GenerateForLatestPlan(ctx context.Context, userID string, budget float64) (*shopping.ShoppingList, error)
	DailyUsage(days int) ([]metrics.DailyUsage, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot wraps the Telegram API and the shopping list service.
type Bot struct {
	api     *tgbotapi.BotAPI
	sender  sender
	service Service
	cfg     *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook when configured.
func NewBot(cfg *config.Config, service Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	slog.Info("Authorized on telegram account", "username", api.Self.UserName)

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		slog.Info("Webhook set", "description", resp.Description)
	}

	return &Bot{api: api, sender: api, service: service, cfg: cfg}, nil
}

// WebhookHandler returns the handler Telegram posts updates to.
func (b *Bot) WebhookHandler() http.Handler {
	return http.HandlerFunc(b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		slog.Warn("Error parsing telegram update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !b.isAllowed(msg.From.ID) {
		slog.Warn("Unauthorized telegram access attempt", "user_id", msg.From.ID, "username", msg.From.UserName)
		return
	}

	go b.processMessage(context.Background(), msg)
}

func (b *Bot) isAllowed(userID int64) bool {
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	ctx = logger.WithRunID(ctx, logger.NewRunID())
	text := strings.TrimSpace(msg.Text)

	if command, args, ok := parseCommand(text); ok {
		switch command {
		case "metrics":
			b.handleMetricsRequest(msg)
		case "shopping":
			b.handleShoppingRequest(ctx, msg, args)
		default:
			b.reply(msg.Chat.ID, helpText)
		}
		return
	}

	if strings.HasPrefix(text, "{") {
		b.handlePlanImport(ctx, msg, text)
		return
	}

	b.reply(msg.Chat.ID, helpText)
}

// parseCommand splits "/cmd@bot arg1 arg2" into its lowercase name and args.
func parseCommand(text string) (string, []string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name), fields[1:], true
}

func (b *Bot) handlePlanImport(ctx context.Context, msg *tgbotapi.Message, text string) {
	log := logger.FromContext(ctx)

	plan, err := planner.Decode([]byte(text))
	if err != nil {
		log.Info("Rejected meal plan", "error", err)
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ *Could not read that meal plan:*\n```\n%s\n```", safeError(err)))
		return
	}
	plan.UserID = userIDOf(msg)

	id, err := b.service.ImportPlan(ctx, plan)
	if err != nil {
		if errors.Is(err, app.ErrEmptyPlan) {
			b.reply(msg.Chat.ID, "❌ That meal plan has no meals with a name and description.")
			return
		}
		log.Error("Failed to import meal plan", "error", err)
		b.reply(msg.Chat.ID, "❌ *Error saving meal plan.*")
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("✅ *Meal plan saved* (#%d, %d meals)\nSend /shopping to build the shopping list.", id, plan.MealCount()))
}

func (b *Bot) handleShoppingRequest(ctx context.Context, msg *tgbotapi.Message, args []string) {
	var budget float64
	if len(args) > 0 {
		v, err := strconv.ParseFloat(strings.TrimPrefix(args[0], "$"), 64)
		if err != nil || v <= 0 {
			b.reply(msg.Chat.ID, "❌ Budget must be a positive number, e.g. /shopping 80")
			return
		}
		budget = v
	}

	status := tgbotapi.NewMessage(msg.Chat.ID, "🛒 *Building your shopping list...*\n(Extracting ingredients from every meal)")
	status.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.sender.Send(status)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to send initial reply", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	list, err := b.service.GenerateForLatestPlan(ctx, userIDOf(msg), budget)
	if err != nil {
		b.edit(msg.Chat.ID, sent.MessageID, b.shoppingErrorText(ctx, err))
		return
	}

	parts := splitMessage(formatShoppingListMarkdown(list), maxMessageLen)
	b.edit(msg.Chat.ID, sent.MessageID, parts[0])
	for _, p := range parts[1:] {
		b.reply(msg.Chat.ID, p)
	}
}

func (b *Bot) shoppingErrorText(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return "📭 No meal plan found. Send me a meal plan as JSON first."
	case errors.Is(err, shopping.ErrInvalidBudget):
		return "❌ Budget must be a positive number."
	}
	logger.FromContext(ctx).Error("Error generating shopping list", "error", err)
	b.sendAdminAlert(fmt.Sprintf("⚠️ *Shopping list failed*\n```\n%s\n```", safeError(err)))
	return fmt.Sprintf("❌ *Error generating shopping list:*\n```\n%s\n```", safeError(err))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if b.cfg.AdminTelegramID == 0 || msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.service.DailyUsage(7)
	if err != nil {
		slog.Error("Error fetching metrics", "error", err)
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	health := metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath))
	b.reply(msg.Chat.ID, formatMetricsMarkdown(usage, health))
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.reply(b.cfg.AdminTelegramID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.sender.Send(m); err != nil {
		slog.Warn("Failed to send telegram message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	e := tgbotapi.NewEditMessageText(chatID, messageID, text)
	e.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.sender.Send(e); err != nil {
		slog.Warn("Failed to edit telegram message", "chat_id", chatID, "error", err)
	}
}

func userIDOf(msg *tgbotapi.Message) string {
	return strconv.FormatInt(msg.From.ID, 10)
}

func safeError(err error) string {
	return strings.ReplaceAll(err.Error(), "`", "'")
}
