// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config holds all configuration for the server.
type Config struct {
	Port             int
	StoreBackend     string
	DBPath           string
	MongoURI         string
	MongoDB          string
	JWTSecret        string
	LogLevel         string
	ReminderSchedule string // cron spec; empty disables reminders
	SeedFile         string // JSON seed for the memory backend
}

// Load reads .env (when present) and the environment, then validates the result.
// Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		StoreBackend:     getEnv("STORE_BACKEND", BackendSQLite),
		DBPath:           getEnv("DB_PATH", "./data/splitshare.db"),
		MongoURI:         os.Getenv("MONGODB_URI"),
		MongoDB:          getEnv("MONGODB_DB", "splitshare"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ReminderSchedule: strings.TrimSpace(os.Getenv("REMINDER_SCHEDULE")),
		SeedFile:         os.Getenv("SEED_FILE"),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	cfg.Port = port

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	switch c.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH required for the sqlite backend"))
		}
	case BackendMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI required for the mongo backend"))
		}
		if c.MongoDB == "" {
			errs = append(errs, errors.New("MONGODB_DB required for the mongo backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q is not one of memory, sqlite, mongo", c.StoreBackend))
	}
	if c.SeedFile != "" && c.StoreBackend != BackendMemory {
		errs = append(errs, errors.New("SEED_FILE only applies to the memory backend"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET not set"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.ReminderSchedule != "" {
		if _, err := cron.ParseStandard(c.ReminderSchedule); err != nil {
			errs = append(errs, fmt.Errorf("invalid REMINDER_SCHEDULE: %w", err))
		}
	}

	return errors.Join(errs...)
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
