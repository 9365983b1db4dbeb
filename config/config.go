package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type DiscordConfig struct {
	BotToken string
}

// IsConfigured returns true if all required Discord configuration is present
func (c DiscordConfig) IsConfigured() bool {
	return c.BotToken != ""
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL    string
	DatabaseSchema string
	Port           string // Optional with default "8080"
	Environment    string

	// AdminAPIKey guards the HTTP admin API; when empty the API is disabled
	AdminAPIKey        string
	CORSAllowedOrigins string

	// SlackAlertWebhookURL is optional; when empty no alerts are posted
	SlackAlertWebhookURL string

	DiscordConfig DiscordConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		DatabaseURL:          databaseURL,
		DatabaseSchema:       databaseSchema,
		Port:                 getEnvWithDefault("PORT", "8080"),
		Environment:          getEnvWithDefault("ENVIRONMENT", "dev"),
		AdminAPIKey:          os.Getenv("ADMIN_API_KEY"),
		CORSAllowedOrigins:   getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		SlackAlertWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),

		DiscordConfig: DiscordConfig{
			BotToken: os.Getenv("DISCORD_BOT_TOKEN"),
		},
	}

	if !config.DiscordConfig.IsConfigured() {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is not set")
	}

	if config.AdminAPIKey == "" {
		log.Printf("⚠️ ADMIN_API_KEY not set - the HTTP admin API will reject all requests")
	}
	if config.SlackAlertWebhookURL == "" {
		log.Printf("⚠️ SLACK_ALERT_WEBHOOK_URL not set - operational alerts are disabled")
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
