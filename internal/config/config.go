package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Prefs   PrefsConfig
	Site    SiteConfig
	Session SessionConfig
}

type ServerConfig struct {
	Port        string
	Environment string
	Version     string
}

type PrefsConfig struct {
	Backend         string
	SQLitePath      string
	RedisAddr       string
	Salt            string
	RetentionMonths int
	CleanupCron     string
}

type SiteConfig struct {
	ContentPath string
	ThemeToggle bool
}

type SessionConfig struct {
	AttachTimeout time.Duration
	EventRate     float64
	EventBurst    int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Prefs: PrefsConfig{
			Backend:         strings.ToLower(getEnv("PREFS_BACKEND", "sqlite")),
			SQLitePath:      getEnv("PREFS_SQLITE_PATH", "portfolio.db"),
			RedisAddr:       getEnv("PREFS_REDIS_ADDR", ""),
			Salt:            getEnv("PREFS_SALT", ""),
			RetentionMonths: getEnvAsInt("PREFS_RETENTION_MONTHS", 12),
			CleanupCron:     getEnv("PREFS_CLEANUP_CRON", "0 0 3 * * *"),
		},
		Site: SiteConfig{
			ContentPath: getEnv("PORTFOLIO_CONTENT", ""),
			ThemeToggle: getEnvAsBool("THEME_TOGGLE", false),
		},
		Session: SessionConfig{
			AttachTimeout: getEnvAsDuration("SESSION_ATTACH_TIMEOUT", 30*time.Second),
			EventRate:     getEnvAsFloat("WS_EVENT_RATE", 60),
			EventBurst:    getEnvAsInt("WS_EVENT_BURST", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var validBackends = map[string]bool{
	"sqlite": true,
	"redis":  true,
	"memory": true,
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if !validBackends[c.Prefs.Backend] {
		return fmt.Errorf("invalid PREFS_BACKEND %q: must be one of sqlite, redis, memory", c.Prefs.Backend)
	}
	if c.Prefs.Backend == "redis" && c.Prefs.RedisAddr == "" {
		return fmt.Errorf("PREFS_REDIS_ADDR is required for the redis backend")
	}
	if c.Prefs.RetentionMonths <= 0 {
		return fmt.Errorf("PREFS_RETENTION_MONTHS must be positive")
	}

	if c.Session.AttachTimeout <= 0 {
		return fmt.Errorf("SESSION_ATTACH_TIMEOUT must be positive")
	}
	if c.Session.EventRate <= 0 || c.Session.EventBurst <= 0 {
		return fmt.Errorf("WS_EVENT_RATE and WS_EVENT_BURST must be positive")
	}

	return nil
}

// Production reports whether gin should run in release mode.
func (c *Config) Production() bool { return c.Server.Environment == "production" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
