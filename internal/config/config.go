package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds runtime settings loaded from env vars.
type Config struct {
	HTTPAddr    string
	Environment string
	LogLevel    string
	LogFile     string

	Database Database
	Redis    Redis

	// TelegramBotToken enables the optional match-notification sender
	// when set. The engine works fine without it.
	TelegramBotToken string
}

// Database holds PostgreSQL connection settings.
type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Redis holds cache connection settings.
type Redis struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// Load loads configuration from environment variables.
// Required variables: DB_NAME, DB_USER.
// Everything else has a development-friendly default.
func Load() Config {
	redisPort, _ := strconv.Atoi(envOr("REDIS_PORT", "6379"))
	redisDB, _ := strconv.Atoi(envOr("REDIS_DB", "0"))
	redisPool, _ := strconv.Atoi(envOr("REDIS_POOL_SIZE", "10"))

	return Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		Environment: envOr("ENVIRONMENT", "development"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFile:     os.Getenv("LOG_FILE"),
		Database: Database{
			Host:     envOr("DB_HOST", "localhost"),
			Port:     envOr("DB_PORT", "5432"),
			User:     envOr("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   envOr("DB_NAME", "astromatch"),
			SSLMode:  envOr("DB_SSLMODE", "disable"),
		},
		Redis: Redis{
			Host:     envOr("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			PoolSize: redisPool,
		},
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}
}

// Validate checks that all required configuration is present and valid.
func (c Config) Validate() error {
	if c.Database.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		return fmt.Errorf("REDIS_PORT is out of range: %d", c.Redis.Port)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
