package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// client side
	BaseURL        string
	SessionID      string
	CSRFCookieName string
	CSRFHeaderName string
	CSRFToken      string
	PollInterval   time.Duration
	FetchTimeout   time.Duration
	CurrencySymbol string
	LogLevel       string

	// order server
	HTTPPort        string
	Store           string
	RedisAddr       string
	RedisPassword   string
	MenuFile        string
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment. Values from a .env file
// in the working directory are used for keys not already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	poll, err := getDuration("POLL_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	fetch, err := getDuration("FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	shutdown, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:         getEnv("CART_BASE_URL", "http://localhost:8080"),
		SessionID:       getEnv("SESSION_ID", ""),
		CSRFCookieName:  getEnv("CSRF_COOKIE_NAME", "csrftoken"),
		CSRFHeaderName:  getEnv("CSRF_HEADER_NAME", "X-CSRFToken"),
		CSRFToken:       getEnv("CSRF_TOKEN", ""),
		PollInterval:    poll,
		FetchTimeout:    fetch,
		CurrencySymbol:  getEnv("CURRENCY_SYMBOL", "S$"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		Store:           getEnv("STORE", "memory"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MenuFile:        getEnv("MENU_FILE", ""),
		ShutdownTimeout: shutdown,
	}
	if cfg.Store != "memory" && cfg.Store != "redis" {
		return nil, fmt.Errorf("STORE must be memory or redis, got %q", cfg.Store)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go durations ("30s") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		d = time.Duration(secs) * time.Second
	} else if d, err = time.ParseDuration(value); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return d, nil
}
