// Package app wires configuration, clients and services into a runnable
// pipeline. It is the shared core used by cmd/holdsnap.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/holdsnap/internal/clients/finnhub"
	"github.com/bobmcallan/holdsnap/internal/clients/sina"
	"github.com/bobmcallan/holdsnap/internal/clients/yahoo"
	"github.com/bobmcallan/holdsnap/internal/common"
	"github.com/bobmcallan/holdsnap/internal/holdings"
	"github.com/bobmcallan/holdsnap/internal/interfaces"
	"github.com/bobmcallan/holdsnap/internal/services/quote"
	"github.com/bobmcallan/holdsnap/internal/services/snapshot"
)

// App holds the initialized configuration, clients and services for one
// pipeline invocation.
type App struct {
	Config    *common.Config
	Logger    *common.Logger
	Providers []interfaces.QuoteProvider
	Resolver  interfaces.QuoteResolver
	Holdings  interfaces.HoldingsSource
	Snapshot  interfaces.SnapshotService
}

// Option overrides configuration after file and environment resolution.
type Option func(*common.Config)

// WithHoldingsPath overrides the holdings input path.
func WithHoldingsPath(path string) Option {
	return func(c *common.Config) {
		if path != "" {
			c.Pipeline.HoldingsPath = path
		}
	}
}

// WithOutputPath overrides the snapshot output path.
func WithOutputPath(path string) Option {
	return func(c *common.Config) {
		if path != "" {
			c.Pipeline.OutputPath = path
		}
	}
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, logging, provider clients and services.
// configPath may be empty, in which case the default resolution logic is
// used: HOLDSNAP_CONFIG, then holdsnap.toml beside the binary, then the
// development fallback config/holdsnap.toml.
func NewApp(configPath string, opts ...Option) (*App, error) {
	if configPath == "" {
		configPath = os.Getenv("HOLDSNAP_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "holdsnap.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/holdsnap.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	for _, opt := range opts {
		opt(config)
	}

	logger := common.NewLogger(config.Logging.Level)

	providers, err := buildProviders(config, logger)
	if err != nil {
		return nil, err
	}

	resolver := quote.NewService(providers, config.Pipeline.Concurrency, logger)
	parser := holdings.NewParser(config.Pipeline.HoldingsPath, logger)
	service := snapshot.NewService(parser, resolver, config.Pipeline.OutputPath, logger)

	return &App{
		Config:    config,
		Logger:    logger,
		Providers: providers,
		Resolver:  resolver,
		Holdings:  parser,
		Snapshot:  service,
	}, nil
}

// buildProviders constructs the provider chain in configured priority order.
func buildProviders(config *common.Config, logger *common.Logger) ([]interfaces.QuoteProvider, error) {
	timeout := config.Pipeline.GetRequestTimeout()

	finnhubKey, err := common.ResolveAPIKey("finnhub_api_key", config.Clients.Finnhub.APIKey)
	if err != nil {
		// The chain still runs: Finnhub attempts will surface as auth
		// failures and fall through to the fallback providers.
		logger.Warn().Msg("Finnhub API key not configured - primary provider will be unavailable")
	}

	registry := map[string]interfaces.QuoteProvider{
		finnhub.ProviderName: newFinnhub(config.Clients.Finnhub, finnhubKey, timeout, logger),
		yahoo.ProviderName:   newYahoo(config.Clients.Yahoo, timeout, logger),
		sina.ProviderName:    newSina(config.Clients.Sina, timeout, logger),
	}

	providers := make([]interfaces.QuoteProvider, 0, len(config.Pipeline.ProviderPriority))
	for _, name := range config.Pipeline.ProviderPriority {
		p, ok := registry[name]
		if !ok {
			logger.Warn().Str("provider", name).Msg("Unknown provider in priority list - skipping")
			continue
		}
		providers = append(providers, p)
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no usable providers in priority list %v", config.Pipeline.ProviderPriority)
	}

	return providers, nil
}

func newFinnhub(cfg common.FinnhubConfig, apiKey string, timeout time.Duration, logger *common.Logger) *finnhub.Client {
	opts := []finnhub.ClientOption{
		finnhub.WithTimeout(timeout),
		finnhub.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, finnhub.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, finnhub.WithRateLimit(cfg.RateLimit))
	}
	return finnhub.NewClient(apiKey, opts...)
}

func newYahoo(cfg common.YahooConfig, timeout time.Duration, logger *common.Logger) *yahoo.Client {
	opts := []yahoo.ClientOption{
		yahoo.WithTimeout(timeout),
		yahoo.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, yahoo.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, yahoo.WithRateLimit(cfg.RateLimit))
	}
	return yahoo.NewClient(opts...)
}

func newSina(cfg common.SinaConfig, timeout time.Duration, logger *common.Logger) *sina.Client {
	opts := []sina.ClientOption{
		sina.WithTimeout(timeout),
		sina.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, sina.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, sina.WithRateLimit(cfg.RateLimit))
	}
	return sina.NewClient(opts...)
}
