package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.API.Port)
	}
	if cfg.FX.CacheTTL != time.Hour {
		t.Errorf("expected default FX cache TTL 1h, got %s", cfg.FX.CacheTTL)
	}
	if cfg.FX.RequestTimeout != 10*time.Second {
		t.Errorf("expected default FX timeout 10s, got %s", cfg.FX.RequestTimeout)
	}
	if cfg.Engine.ConcurrentTickers != 5 {
		t.Errorf("expected default concurrency 5, got %d", cfg.Engine.ConcurrentTickers)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if cfg.Database.MaxConns != 8 {
		t.Errorf("expected default max conns 8, got %d", cfg.Database.MaxConns)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database:
  url: postgres://db.example.com:5432/funds
  max_conns: 16
fx:
  cache_ttl: 30m
api:
  port: 9999
  cors_origins:
    - https://app.example.com
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Database.URL != "postgres://db.example.com:5432/funds" {
		t.Errorf("unexpected database url: %s", cfg.Database.URL)
	}
	if cfg.Database.MaxConns != 16 {
		t.Errorf("expected max conns 16, got %d", cfg.Database.MaxConns)
	}
	if cfg.FX.CacheTTL != 30*time.Minute {
		t.Errorf("expected FX cache TTL 30m, got %s", cfg.FX.CacheTTL)
	}
	if cfg.API.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.API.Port)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "https://app.example.com" {
		t.Errorf("unexpected CORS origins: %v", cfg.API.CORSOrigins)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json log format, got %s", cfg.Logging.Format)
	}
	// Values absent from the file keep their defaults.
	if cfg.FX.RequestTimeout != 10*time.Second {
		t.Errorf("expected default FX timeout 10s, got %s", cfg.FX.RequestTimeout)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FUNDLINE_DATABASE_URL", "postgres://env.example.com:5432/override")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.URL != "postgres://env.example.com:5432/override" {
		t.Errorf("expected env override, got %s", cfg.Database.URL)
	}
}
