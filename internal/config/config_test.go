package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("COMMENT_COOLDOWN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("Expected db.internal, got %s", cfg.Database.Host)
	}
	if cfg.Comments.PageSize != 10 {
		t.Errorf("Expected page size 10, got %d", cfg.Comments.PageSize)
	}
	if cfg.Comments.Cooldown != 10*time.Second {
		t.Errorf("Expected 10s cooldown, got %s", cfg.Comments.Cooldown)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("COMMENT_COOLDOWN", "3s")
	t.Setenv("REPLY_PAGE_SIZE", "20")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Comments.Cooldown != 3*time.Second {
		t.Errorf("Expected 3s, got %s", cfg.Comments.Cooldown)
	}
	if cfg.Comments.ReplyPageSize != 20 {
		t.Errorf("Expected 20, got %d", cfg.Comments.ReplyPageSize)
	}
	if cfg.RateLimit.RPS != 2.5 {
		t.Errorf("Expected 2.5, got %f", cfg.RateLimit.RPS)
	}
	if !cfg.Redis.Enabled {
		t.Error("Redis should be enabled")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("COMMENT_PAGE_SIZE", "ten")
	t.Setenv("COMMENT_COOLDOWN", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Comments.PageSize != 10 {
		t.Errorf("Expected fallback page size 10, got %d", cfg.Comments.PageSize)
	}
	if cfg.Comments.Cooldown != 10*time.Second {
		t.Errorf("Expected fallback cooldown, got %s", cfg.Comments.Cooldown)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "missing host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: true},
		{name: "zero page size", mutate: func(c *Config) { c.Comments.PageSize = 0 }, wantErr: true},
		{name: "embedded replies above page size", mutate: func(c *Config) { c.Comments.EmbeddedReplies = 11 }, wantErr: true},
		{name: "negative cooldown", mutate: func(c *Config) { c.Comments.Cooldown = -time.Second }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Database.Host = "localhost"
			cfg.Database.Name = "sporthub"
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=h port=1 user=u password=p dbname=n sslmode=disable"
	if got := db.GetDSN(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
