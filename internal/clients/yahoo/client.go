// Package yahoo provides a client for the Yahoo Finance chart API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/holdsnap/internal/common"
	"github.com/bobmcallan/holdsnap/internal/interfaces"
	"github.com/bobmcallan/holdsnap/internal/models"
)

const (
	ProviderName = "yahoo"

	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the QuoteProvider interface using the public Yahoo
// Finance chart endpoint. No API key is required; this is the bulk
// fallback source, slower and less fresh than Finnhub but covering US,
// mainland and Hong Kong listings.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the provider name.
func (c *Client) Name() string { return ProviderName }

// Supports reports whether the market is served. Yahoo covers all three.
func (c *Client) Supports(market models.Market) bool {
	switch market {
	case models.MarketUS, models.MarketCN, models.MarketHK:
		return true
	}
	return false
}

// chartResponse is the subset of the v8 chart payload the adapter reads.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchQuote retrieves a quote via the chart endpoint, mapping the ticker
// to Yahoo's symbol format (e.g. "600519.SS", "0700.HK").
func (c *Client) FetchQuote(ctx context.Context, identity models.AssetIdentity) (*models.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "rate limit wait: %v", err)
	}

	symbol := identity.YahooSymbol()
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "failed to create request: %v", err)
	}
	// Yahoo rejects requests without a browser-ish user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; holdsnap)")

	c.logger.Debug().Str("symbol", symbol).Msg("Yahoo chart request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "request failed: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, models.NewProviderError(ProviderName, models.ErrRateLimited, "HTTP 429")
	case resp.StatusCode == http.StatusNotFound:
		return nil, models.NewProviderError(ProviderName, models.ErrNotFound, "symbol %s not found", symbol)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "HTTP %d: %s", resp.StatusCode, string(body))
	}

	var cr chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "failed to decode response: %v", err)
	}

	if cr.Chart.Error != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrNotFound, "%s: %s", cr.Chart.Error.Code, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, models.NewProviderError(ProviderName, models.ErrNotFound, "empty result for %s", symbol)
	}

	meta := cr.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, models.NewProviderError(ProviderName, models.ErrNotFound, "no price for %s", symbol)
	}

	priorClose := meta.PreviousClose
	if priorClose == 0 {
		priorClose = meta.ChartPreviousClose
	}

	asOf := time.Now().UTC()
	if meta.RegularMarketTime > 0 {
		asOf = time.Unix(meta.RegularMarketTime, 0).UTC()
	}

	return &models.Quote{
		Ticker:     identity.Ticker,
		Price:      meta.RegularMarketPrice,
		PriorClose: priorClose,
		ChangePct:  models.ChangePctFrom(meta.RegularMarketPrice, priorClose),
		AsOf:       asOf,
		Source:     ProviderName,
	}, nil
}

// Ensure Client implements QuoteProvider
var _ interfaces.QuoteProvider = (*Client)(nil)
