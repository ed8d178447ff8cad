package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port          string
	LogLevel      string
	DatabaseURL   string
	AuthToken     string
	MigrationsDir string
}

func Load() Config {
	cfg := Config{
		Port:          envOrDefault("DESKSYNC_PORT", "8090"),
		LogLevel:      envOrDefault("DESKSYNC_LOG_LEVEL", "info"),
		DatabaseURL:   envOrDefault("DESKSYNC_DATABASE_URL", "file:desksync.db"),
		AuthToken:     strings.TrimSpace(os.Getenv("DESKSYNC_AUTH_TOKEN")),
		MigrationsDir: envOrDefault("DESKSYNC_MIGRATIONS_DIR", "migrations"),
	}
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	}
	return cfg
}

// AgentConfig configures the headless client agent.
type AgentConfig struct {
	ServerURL string
	AuthToken string
	UserID    string
	StateFile string
	LogLevel  string
	Cooldown  time.Duration
	Debounce  time.Duration
}

func LoadAgent() AgentConfig {
	return AgentConfig{
		ServerURL: envOrDefault("DESKSYNC_SERVER_URL", "http://localhost:8090"),
		AuthToken: strings.TrimSpace(os.Getenv("DESKSYNC_AUTH_TOKEN")),
		UserID:    envOrDefault("DESKSYNC_USER_ID", "default"),
		StateFile: envOrDefault("DESKSYNC_STATE_FILE", "desksync-state.json"),
		LogLevel:  envOrDefault("DESKSYNC_LOG_LEVEL", "info"),
		Cooldown:  durationOrDefault("DESKSYNC_HYDRATION_COOLDOWN", time.Second),
		Debounce:  durationOrDefault("DESKSYNC_PUSH_DEBOUNCE", 2*time.Second),
	}
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil && d > 0 {
		return d
	}
	return fallback
}
