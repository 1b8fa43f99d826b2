package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/example/learnpath/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the placeholder used when JWT_SECRET is unset
const DefaultJWTSecret = "change-me"

// ErrInsecureJWTSecret is returned by RequireSecureJWTSecret for the placeholder secret
var ErrInsecureJWTSecret = errors.New("JWT_SECRET is not set, refusing to sign tokens with the default secret")

type Config struct {
	HTTPAddr    string `validate:"required"`
	DBDriver    string `validate:"oneof=sqlite3 postgres"`
	DatabaseURL string
	JWTSecret   string `validate:"required"`
	LogLevel    string
	LogFormat   string `validate:"oneof=json console"`

	TelegramBotToken      string
	EnableScheduler       bool
	NotificationStartHour int `validate:"min=0,max=23"`
	NotificationEndHour   int `validate:"min=0,max=23,gtefield=NotificationStartHour"`
	ReminderInactiveDays  int `validate:"min=1"`

	RecommendationCount int `validate:"min=1,max=50"`
	SVDComponentCap     int `validate:"min=1"`
}

// Load reads the configuration from the environment and an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		DBDriver:    getEnv("DB_DRIVER", "sqlite3"),
		DatabaseURL: getEnv("DATABASE_URL", "data/learnpath.db"),
		JWTSecret:   getEnv("JWT_SECRET", DefaultJWTSecret),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "json")),

		TelegramBotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		EnableScheduler:       getBool("ENABLE_SCHEDULER", true),
		NotificationStartHour: getInt("NOTIFICATION_START_HOUR", 8),
		NotificationEndHour:   getInt("NOTIFICATION_END_HOUR", 22),
		ReminderInactiveDays:  getInt("REMINDER_INACTIVE_DAYS", 3),

		RecommendationCount: getInt("RECOMMENDATION_COUNT", 5),
		SVDComponentCap:     getInt("SVD_COMPONENT_CAP", 100),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.JWTSecret == DefaultJWTSecret {
		logging.Warn().Msg("JWT_SECRET is not set, using the insecure default secret")
	}
	return cfg, nil
}

// RequireSecureJWTSecret fails when tokens would be signed with the default secret
func (c *Config) RequireSecureJWTSecret() error {
	if c.JWTSecret == DefaultJWTSecret {
		return ErrInsecureJWTSecret
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		logging.Debug().Str("key", key).Str("default", def).Msg("config value not set, using default")
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logging.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("config value is not a number, using default")
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logging.Warn().Str("key", key).Str("value", v).Bool("default", def).Msg("config value is not a boolean, using default")
		return def
	}
	return b
}
