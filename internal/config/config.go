package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string
	LogLevel    string
	LogFormat   string

	// InstanceID identifies this process in welcome frames, bus
	// envelopes, and the instance registry. Defaults to the hostname
	// plus a random suffix.
	InstanceID string

	// WebSocket admission: sliding-window rate limit per client IP.
	WSRateLimit  int
	WSRateWindow time.Duration

	// BlockedUserAgents denies upgrade requests whose User-Agent
	// contains any of these substrings.
	BlockedUserAgents []string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		InstanceID:  getEnv("INSTANCE_ID", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	if cfg.InstanceID == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "local"
		}
		// A random suffix keeps co-located processes distinct; origin
		// filtering on the bus depends on instance IDs being unique.
		cfg.InstanceID = fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT must be a valid port number, got %q", cfg.Port)
	}

	limit, err := strconv.Atoi(getEnv("WS_RATE_LIMIT", "5"))
	if err != nil || limit < 1 {
		return nil, fmt.Errorf("WS_RATE_LIMIT must be a positive integer")
	}
	cfg.WSRateLimit = limit

	window, err := time.ParseDuration(getEnv("WS_RATE_WINDOW", "2s"))
	if err != nil || window <= 0 {
		return nil, fmt.Errorf("WS_RATE_WINDOW must be a positive duration")
	}
	cfg.WSRateWindow = window

	if ua := getEnv("BLOCKED_USER_AGENTS", ""); ua != "" {
		for _, part := range strings.Split(ua, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cfg.BlockedUserAgents = append(cfg.BlockedUserAgents, part)
			}
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
