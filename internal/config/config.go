package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the configuration for the service
type Config struct {
	// Database type: "sqlite" or "postgres"
	DBType string
	// Path of the SQLite file
	DBPath string
	// PostgreSQL connection string
	DatabaseURL string

	// Telegram bot token; the bot is disabled when empty
	TelegramToken string
	// Telegram user IDs allowed to run admin commands
	AdminUserIDs map[int64]bool

	// Address of the HTTP API; the API is disabled when empty
	HTTPAddr string

	// Generator backend: "gemini", "openai" or "fallback"
	GeneratorProvider string
	GeminiAPIKey      string
	GeminiModel       string
	OpenAIAPIKey      string
	OpenAIModel       string
	GeneratorTimeout  time.Duration

	// Hour of day (local time) for the daily broadcast
	NotificationHour int
	SchedulerEnabled bool

	// Optional YAML file overriding the badge icon pools
	BadgePoolFile string

	LogMode string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DBType:            "sqlite",
		DBPath:            "data/psychly.db",
		AdminUserIDs:      make(map[int64]bool),
		HTTPAddr:          ":8080",
		GeneratorProvider: "gemini",
		GeminiModel:       "gemini-2.0-flash",
		OpenAIModel:       "gpt-4o-mini",
		GeneratorTimeout:  30 * time.Second,
		NotificationHour:  9,
		SchedulerEnabled:  true,
		LogMode:           "dev",
	}
}

// Load reads an optional .env file and then the environment
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, starting from the defaults
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	setString(&cfg.DBType, getenv("DB_TYPE"))
	setString(&cfg.DBPath, getenv("DB_PATH"))
	setString(&cfg.DatabaseURL, getenv("DATABASE_URL"))
	setString(&cfg.TelegramToken, getenv("TELEGRAM_BOT_TOKEN"))
	setString(&cfg.GeneratorProvider, strings.ToLower(getenv("GENERATOR_PROVIDER")))
	setString(&cfg.GeminiAPIKey, getenv("GEMINI_API_KEY"))
	setString(&cfg.GeminiModel, getenv("GEMINI_MODEL"))
	setString(&cfg.OpenAIAPIKey, getenv("OPENAI_API_KEY"))
	setString(&cfg.OpenAIModel, getenv("OPENAI_MODEL"))
	setString(&cfg.BadgePoolFile, getenv("BADGE_POOL_FILE"))
	setString(&cfg.LogMode, getenv("LOG_MODE"))

	// HTTP_ADDR=off disables the API
	if v, ok := lookup(getenv, "HTTP_ADDR"); ok {
		if strings.EqualFold(v, "off") {
			cfg.HTTPAddr = ""
		} else {
			cfg.HTTPAddr = v
		}
	}

	if v, ok := lookup(getenv, "NOTIFICATION_HOUR"); ok {
		h, err := strconv.Atoi(v)
		if err != nil || h < 0 || h > 23 {
			return nil, fmt.Errorf("NOTIFICATION_HOUR must be between 0 and 23, got %q", v)
		}
		cfg.NotificationHour = h
	}

	if v, ok := lookup(getenv, "ENABLE_SCHEDULER"); ok {
		cfg.SchedulerEnabled = v != "false"
	}

	if v, ok := lookup(getenv, "GENERATOR_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid GENERATOR_TIMEOUT: %w", err)
		}
		cfg.GeneratorTimeout = d
	}

	if v, ok := lookup(getenv, "ADMIN_USER_IDS"); ok {
		for _, idStr := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid admin user ID %q: %w", idStr, err)
			}
			cfg.AdminUserIDs[id] = true
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends are usable
func (c *Config) Validate() error {
	switch c.DBType {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_TYPE is postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}

	switch c.GeneratorProvider {
	case "gemini", "openai", "fallback":
	default:
		return fmt.Errorf("unsupported GENERATOR_PROVIDER %q", c.GeneratorProvider)
	}
	return nil
}

func lookup(getenv func(string) string, key string) (string, bool) {
	v := strings.TrimSpace(getenv(key))
	return v, v != ""
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
