package config

import (
	"log/slog"
	"strings"
	"testing"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_BACKEND", "DB_PATH", "MONGODB_URI", "MONGODB_DB", "LOG_LEVEL", "REMINDER_SCHEDULE", "SEED_FILE"} {
		t.Setenv(key, "")
	}
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.Port != 8080 || cfg.StoreBackend != BackendSQLite || cfg.DBPath != "./data/splitshare.db" ||
		cfg.MongoDB != "splitshare" || cfg.LogLevel != "info" || cfg.ReminderSchedule != "" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REMINDER_SCHEDULE", "0 9 * * MON")
	t.Setenv("SEED_FILE", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.Port != 9090 || cfg.StoreBackend != BackendMongo || cfg.ReminderSchedule != "0 9 * * MON" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestFromEnv_BadPort(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("JWT_SECRET", "s3cret")
	if _, err := FromEnv(); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8080, StoreBackend: BackendMemory, JWTSecret: "x", LogLevel: "info"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []string
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, []string{"JWT_SECRET"}},
		{"bad backend", func(c *Config) { c.StoreBackend = "redis" }, []string{"STORE_BACKEND"}},
		{"mongo without uri", func(c *Config) { c.StoreBackend = BackendMongo; c.MongoDB = "db" }, []string{"MONGODB_URI"}},
		{"seed on sqlite", func(c *Config) { c.StoreBackend = BackendSQLite; c.DBPath = "x.db"; c.SeedFile = "seed.json" }, []string{"SEED_FILE"}},
		{"bad schedule", func(c *Config) { c.ReminderSchedule = "every day" }, []string{"REMINDER_SCHEDULE"}},
		{"several problems", func(c *Config) { c.Port = 0; c.LogLevel = "loud"; c.JWTSecret = "" }, []string{"PORT", "LOG_LEVEL", "JWT_SECRET"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want errors mentioning %v", tt.wantErr)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() = %q, missing %s", err, want)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) should fail")
	}
}
