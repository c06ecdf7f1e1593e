package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	TelegramToken string
	DatabaseURL   string
	LogLevel      string
	Port          string

	// Engine tunables. The engine itself never hardwires these values;
	// they are injected at construction time.
	MaxDailyPoints    int
	HotThreshold      int
	TrendingThreshold int
	TrendWindowDays   int
	FreezeCooldown    time.Duration

	// DayKeyTimezone selects the calendar used for daily budget resets and
	// history bucketing: "local" (device-local day) or "utc".
	DayKeyTimezone string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		Port:           getEnvOrDefault("PORT", "8080"),
		DayKeyTimezone: getEnvOrDefault("DAY_KEY_TIMEZONE", "local"),
	}

	// Required environment variables
	if cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN"); cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}

	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if cfg.DayKeyTimezone != "local" && cfg.DayKeyTimezone != "utc" {
		return nil, fmt.Errorf("DAY_KEY_TIMEZONE must be \"local\" or \"utc\", got %q", cfg.DayKeyTimezone)
	}

	var err error
	if cfg.MaxDailyPoints, err = getEnvIntOrDefault("MAX_DAILY_POINTS", 3); err != nil {
		return nil, err
	}
	if cfg.HotThreshold, err = getEnvIntOrDefault("TREND_HOT_THRESHOLD", 10); err != nil {
		return nil, err
	}
	if cfg.TrendingThreshold, err = getEnvIntOrDefault("TREND_TRENDING_THRESHOLD", 5); err != nil {
		return nil, err
	}
	if cfg.TrendWindowDays, err = getEnvIntOrDefault("TREND_WINDOW_DAYS", 7); err != nil {
		return nil, err
	}

	cooldownMs, err := getEnvIntOrDefault("FREEZE_COOLDOWN_MS", 1000)
	if err != nil {
		return nil, err
	}
	cfg.FreezeCooldown = time.Duration(cooldownMs) * time.Millisecond

	if cfg.MaxDailyPoints <= 0 {
		return nil, fmt.Errorf("MAX_DAILY_POINTS must be positive, got %d", cfg.MaxDailyPoints)
	}
	if cfg.TrendWindowDays <= 0 {
		return nil, fmt.Errorf("TREND_WINDOW_DAYS must be positive, got %d", cfg.TrendWindowDays)
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns an integer environment variable value or the
// default if not set. A set but non-numeric value is a configuration error.
func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}
