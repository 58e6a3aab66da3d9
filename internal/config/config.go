package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the runtime configuration shared by the CLI, the API server
// and the Telegram bot.
type Config struct {
	FoodsPath     string
	TemplatesPath string
	DatabasePath  string

	// HTTP API
	ListenAddr string
	JWTSecret  string

	// Telegram Config
	TelegramBotToken    string
	TelegramWebhookURL  string
	TelegramAllowUserID int64
}

// NewFromEnv creates a new Config object from environment variables. Paths
// and the listen address fall back to local defaults so the CLI works out of
// the box; secrets stay empty here and are checked by the surface that needs
// them.
func NewFromEnv() (*Config, error) {
	foodsPath := os.Getenv("FOODS_PATH")
	if foodsPath == "" {
		foodsPath = "data/foods.json"
	}

	templatesPath := os.Getenv("TEMPLATES_PATH")
	if templatesPath == "" {
		templatesPath = "data/templates.json"
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = "meal_planner.db"
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	jwtSecret := os.Getenv("JWT_SECRET")

	// Telegram Config (Optional for CLI, required for Bot)
	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	telegramAllowUserIDStr := os.Getenv("TELEGRAM_ALLOW_USER_ID")
	var telegramAllowUserID int64
	if telegramAllowUserIDStr != "" {
		var err error
		telegramAllowUserID, err = strconv.ParseInt(telegramAllowUserIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOW_USER_ID %q: %w", telegramAllowUserIDStr, err)
		}
	}

	return &Config{
		FoodsPath:           foodsPath,
		TemplatesPath:       templatesPath,
		DatabasePath:        databasePath,
		ListenAddr:          listenAddr,
		JWTSecret:           jwtSecret,
		TelegramBotToken:    telegramBotToken,
		TelegramWebhookURL:  telegramWebhookURL,
		TelegramAllowUserID: telegramAllowUserID,
	}, nil
}

// RequireJWTSecret fails when the API server or token minting is used
// without a signing secret.
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable not set")
	}
	return nil
}

// RequireTelegram fails when the bot is started without its credentials.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}
