// Package common provides shared utilities for Holdsnap
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Holdsnap
type Config struct {
	Environment string         `toml:"environment"`
	Pipeline    PipelineConfig `toml:"pipeline"`
	Clients     ClientsConfig  `toml:"clients"`
	Logging     LoggingConfig  `toml:"logging"`
}

// PipelineConfig holds the pipeline run configuration.
type PipelineConfig struct {
	HoldingsPath     string   `toml:"holdings_path"`
	OutputPath       string   `toml:"output_path"`
	ProviderPriority []string `toml:"provider_priority"` // ordered, primary first
	RequestTimeout   string   `toml:"request_timeout"`
	Concurrency      int      `toml:"concurrency"` // bounded worker pool size
}

// GetRequestTimeout parses and returns the per-request timeout duration.
func (c *PipelineConfig) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Finnhub FinnhubConfig `toml:"finnhub"`
	Yahoo   YahooConfig   `toml:"yahoo"`
	Sina    SinaConfig    `toml:"sina"`
}

// FinnhubConfig holds Finnhub API configuration
type FinnhubConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
}

// YahooConfig holds Yahoo Finance configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
}

// SinaConfig holds Sina quote-list configuration
type SinaConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a config populated with defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Pipeline: PipelineConfig{
			HoldingsPath:     "config/Holdings.md",
			OutputPath:       "output/holdings_snapshot.json",
			ProviderPriority: []string{"finnhub", "yahoo"},
			RequestTimeout:   "10s",
			Concurrency:      4,
		},
		Clients: ClientsConfig{
			Finnhub: FinnhubConfig{RateLimit: 1},
			Yahoo:   YahooConfig{RateLimit: 5},
			Sina:    SinaConfig{RateLimit: 5},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Apply environment overrides
	applyEnvOverrides(config)

	normalizeProviderPriority(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("HOLDSNAP_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("HOLDSNAP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("HOLDSNAP_HOLDINGS_PATH"); path != "" {
		config.Pipeline.HoldingsPath = path
	}

	if path := os.Getenv("HOLDSNAP_OUTPUT_PATH"); path != "" {
		config.Pipeline.OutputPath = path
	}

	if timeout := os.Getenv("HOLDSNAP_REQUEST_TIMEOUT"); timeout != "" {
		config.Pipeline.RequestTimeout = timeout
	}

	if workers := os.Getenv("HOLDSNAP_CONCURRENCY"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			config.Pipeline.Concurrency = n
		}
	}

	if priority := os.Getenv("HOLDSNAP_PROVIDER_PRIORITY"); priority != "" {
		config.Pipeline.ProviderPriority = strings.Split(priority, ",")
	}
}

// normalizeProviderPriority trims and lowercases provider names, dropping
// empty entries, and restores the default chain if nothing is left.
func normalizeProviderPriority(config *Config) {
	cleaned := make([]string, 0, len(config.Pipeline.ProviderPriority))
	for _, name := range config.Pipeline.ProviderPriority {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			cleaned = append(cleaned, name)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{"finnhub", "yahoo"}
	}
	config.Pipeline.ProviderPriority = cleaned
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment or config fallback.
// Environment variables win so secrets can stay out of checked-in config.
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"finnhub_api_key": {"FINNHUB_API_KEY", "HOLDSNAP_FINNHUB_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
