package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Port          string
	Environment   string
	APIKey        string
	AdminUsername string
	AdminPassword string

	// External assistant (LLM) boundary
	AssistantEndpoint  string
	AssistantAPIKey    string
	AssistantModel     string
	AssistantTimeoutMS int

	// Formatting
	NumberLocale     string // BCP 47 tag; "en-IN" gives 2-3-2 digit grouping
	FallbackCurrency string
	ResponseWordCap  int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		APIKey:        getEnv("API_KEY", "default_secret_key"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),

		AssistantEndpoint:  getEnv("ASSISTANT_ENDPOINT", ""),
		AssistantAPIKey:    getEnv("ASSISTANT_API_KEY", ""),
		AssistantModel:     getEnv("ASSISTANT_MODEL", "gpt-4o-mini"),
		AssistantTimeoutMS: getEnvInt("ASSISTANT_TIMEOUT_MS", 15000),

		NumberLocale:     getEnv("NUMBER_LOCALE", "en-IN"),
		FallbackCurrency: getEnv("FALLBACK_CURRENCY", "₹"),
		ResponseWordCap:  getEnvInt("RESPONSE_WORD_CAP", 220),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
