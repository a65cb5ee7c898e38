package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	DatabaseURL     string
	ServerPort      string
	FrontendURL     string
	ChannelSecret   string
	ChannelToken    string
	OpenAIKey       string
	AIModel         string
	AIBaseURL       string
	RubricPath      string
	RabbitMQURL     string
	RabbitPrefetch  int
	RedisURL        string
	RateLimit       string
	JWTSecret       string
	AdminUserID     string
	ServerDebugMode bool
	WorkerDebugMode bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		ChannelSecret:   getEnv("LINE_CHANNEL_SECRET", ""),
		ChannelToken:    getEnv("LINE_CHANNEL_TOKEN", ""),
		OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
		AIModel:         getEnv("AI_MODEL", ""),
		AIBaseURL:       getEnv("AI_BASE_URL", ""),
		RubricPath:      getEnv("RUBRIC_PATH", ""),
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		RabbitPrefetch:  getEnvInt("RABBITMQ_PREFETCH", 1),
		RedisURL:        getEnv("REDIS_URL", ""),
		RateLimit:       getEnv("RATE_LIMIT", "20-M"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		AdminUserID:     getEnv("ADMIN_USER_ID", ""),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode: getEnvBool("WORKER_DEBUG_MODE", false),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.ChannelSecret == "" {
		return nil, fmt.Errorf("LINE_CHANNEL_SECRET is required")
	}

	if cfg.ChannelToken == "" {
		return nil, fmt.Errorf("LINE_CHANNEL_TOKEN is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required for dashboard authentication")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
