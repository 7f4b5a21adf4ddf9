// Package config handles configuration loading for fundline.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	FX       FXConfig       `mapstructure:"fx"       yaml:"fx"`
	Engine   EngineConfig   `mapstructure:"engine"   yaml:"engine"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// DatabaseConfig holds connection settings for the statement/price store.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"       yaml:"url"`
	MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns"`
}

// FXConfig holds exchange-rate resolver settings.
type FXConfig struct {
	QuoteURL       string        `mapstructure:"quote_url"       yaml:"quote_url"`       // endpoint template with from/to placeholders
	CacheTTL       time.Duration `mapstructure:"cache_ttl"       yaml:"cache_ttl"`       // rate cache lifetime
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // per-lookup timeout
	RatePerSecond  float64       `mapstructure:"rate_per_second" yaml:"rate_per_second"` // quote source request budget
}

// EngineConfig holds series engine settings.
type EngineConfig struct {
	ConcurrentTickers int `mapstructure:"concurrent_tickers" yaml:"concurrent_tickers"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fundline/config.yaml (home directory)
//  3. /etc/fundline/config.yaml (system)
//
// Environment variables override config file values.
// Format: FUNDLINE_<SECTION>_<KEY>, e.g., FUNDLINE_DATABASE_URL
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fundline"))
	v.AddConfigPath("/etc/fundline")

	v.SetEnvPrefix("FUNDLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("FUNDLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.url", "postgres://localhost:5432/fundline")
	v.SetDefault("database.max_conns", 8)

	// FX defaults
	v.SetDefault("fx.quote_url", "https://query1.finance.yahoo.com/v8/finance/chart/%s%s=X?interval=1d&range=1d")
	v.SetDefault("fx.cache_ttl", time.Hour)
	v.SetDefault("fx.request_timeout", 10*time.Second)
	v.SetDefault("fx.rate_per_second", 5.0)

	// Engine defaults
	v.SetDefault("engine.concurrent_tickers", 5)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if url := os.Getenv("FUNDLINE_DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if url := os.Getenv("FUNDLINE_FX_QUOTE_URL"); url != "" {
		cfg.FX.QuoteURL = url
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
