package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// LLM providers understood by llm.NewTextGenerator.
const (
	ProviderGroq      = "groq"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Config holds the configuration for the application.
type Config struct {
	LLMProvider     string `validate:"oneof=groq gemini anthropic"`
	GroqAPIKey      string
	GeminiAPIKey    string
	AnthropicAPIKey string

	DatabasePath string `validate:"required"`
	ExportDir    string

	// Shopping list generation
	DefaultWeeklyBudget  float64 `validate:"gt=0"`
	ExtractorConcurrency int     `validate:"min=1,max=32"`
	ExtractorRPM         int     `validate:"min=0"`
	CostJitter           bool

	// HTTP API
	Port      string `validate:"required,numeric"`
	JWTSecret string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string `validate:"omitempty,url"`
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderGroq)),
		GroqAPIKey:      os.Getenv("GROQ_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		DatabasePath:    getEnv("DATABASE_PATH", "data/planner.db"),
		ExportDir:       os.Getenv("EXPORT_DIR"),
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),

		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.DefaultWeeklyBudget, err = strconv.ParseFloat(getEnv("WEEKLY_BUDGET", "100"), 64); err != nil {
		return nil, fmt.Errorf("invalid WEEKLY_BUDGET value: %w", err)
	}
	if cfg.ExtractorConcurrency, err = strconv.Atoi(getEnv("EXTRACTOR_CONCURRENCY", "4")); err != nil {
		return nil, fmt.Errorf("invalid EXTRACTOR_CONCURRENCY value: %w", err)
	}
	if cfg.ExtractorRPM, err = strconv.Atoi(getEnv("EXTRACTOR_RPM", "30")); err != nil {
		return nil, fmt.Errorf("invalid EXTRACTOR_RPM value: %w", err)
	}
	if cfg.CostJitter, err = strconv.ParseBool(getEnv("COST_JITTER", "false")); err != nil {
		return nil, fmt.Errorf("invalid COST_JITTER value: %w", err)
	}
	if cfg.TelegramAllowedUserIDs, err = parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS")); err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS value: %w", err)
	}
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		if cfg.AdminTelegramID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID value: %w", err)
		}
	}

	if err := cfg.requireProviderKey(); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// requireProviderKey only checks the key of the provider that will be used.
func (c *Config) requireProviderKey() error {
	var name, value string
	switch c.LLMProvider {
	case ProviderGroq:
		name, value = "GROQ_API_KEY", c.GroqAPIKey
	case ProviderGemini:
		name, value = "GEMINI_API_KEY", c.GeminiAPIKey
	case ProviderAnthropic:
		name, value = "ANTHROPIC_API_KEY", c.AnthropicAPIKey
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if value == "" {
		return fmt.Errorf("%s environment variable not set", name)
	}
	return nil
}

// TelegramEnabled reports whether the bot should be started.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
