// Package config loads solekit settings.
//
// Sources, highest priority first:
//  1. explicit --config path;
//  2. SOLEKIT_CONFIG;
//  3. ./solekit.yaml;
//  4. environment only.
//
// Environment variables always override file values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "solekit.yaml"

type Config struct {
	API    APIConfig    `yaml:"api"`
	Notify NotifyConfig `yaml:"notify"`
	DB     DBConfig     `yaml:"db"`
}

// APIConfig points at the store backend.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"     env:"SOLEKIT_API_BASE_URL"     env-default:"http://localhost:5000"`
	Timeout     time.Duration `yaml:"timeout"      env:"SOLEKIT_API_TIMEOUT"      env-default:"15s"`
	RefreshMode string        `yaml:"refresh_mode" env:"SOLEKIT_API_REFRESH_MODE" env-default:"per-request"`
	UserAgent   string        `yaml:"user_agent"   env:"SOLEKIT_API_USER_AGENT"   env-default:"solekit"`
}

// NotifyConfig controls the generic error notification.
type NotifyConfig struct {
	// AllowList replaces the built-in list of endpoints whose failures are not announced.
	AllowList []string `yaml:"allow_list" env:"SOLEKIT_NOTIFY_ALLOW_LIST" env-separator:","`
}

// DBConfig locates the local session and cache database.
type DBConfig struct {
	Path string `yaml:"path" env:"SOLEKIT_DB_PATH"`
}

// Validate checks values that cleanenv cannot.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	switch c.API.RefreshMode {
	case "per-request", "coalesced":
	default:
		return fmt.Errorf("api.refresh_mode must be per-request or coalesced, got %q", c.API.RefreshMode)
	}
	return nil
}

// Load resolves the configuration source and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		// ReadConfig overlays the environment on top of the file.
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", p, err)
		}
		return &cfg, nil
	}

	if path != "" {
		return readFile(path)
	}
	if envPath := os.Getenv("SOLEKIT_CONFIG"); envPath != "" {
		return readFile(envPath)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return readFile(DefaultFile)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	return &cfg, nil
}
