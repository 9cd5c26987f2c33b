package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		TelegramBotToken:        "token",
		DBPassword:              "secret",
		DBMaxConns:              10,
		DBMinConns:              2,
		StorageTimeout:          5 * time.Second,
		AppTimezone:             "Europe/Moscow",
		DayCutoffHour:           5,
		ReminderHour:            21,
		BotMaxInflight:          64,
		BotUpdateTimeoutSeconds: 60,
		RateLimitRequests:       10,
		RateLimitWindow:         time.Minute,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"cutoff out of range", func(c *Config) { c.DayCutoffHour = 24 }, true},
		{"reminder out of range", func(c *Config) { c.ReminderHour = -1 }, true},
		{"bad timezone", func(c *Config) { c.AppTimezone = "Mars/Olympus" }, true},
		{"min conns above max", func(c *Config) { c.DBMinConns = 20 }, true},
		{"zero storage timeout", func(c *Config) { c.StorageTimeout = 0 }, true},
		{"http without secret", func(c *Config) { c.HTTPAddr = ":8080" }, true},
		{"http with secret", func(c *Config) {
			c.HTTPAddr = ":8080"
			c.JWTSecret = "0123456789abcdef"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := validConfig()
	cfg.DBUser = "u"
	cfg.DBHost = "db"
	cfg.DBPort = 5432
	cfg.DBName = "progress"
	cfg.DBSSLMode = "disable"
	want := "postgres://u:secret@db:5432/progress?sslmode=disable"
	if got := cfg.DatabaseDSN(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
