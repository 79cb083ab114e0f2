// Package finnhub provides a client for the Finnhub quote API
package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/holdsnap/internal/common"
	"github.com/bobmcallan/holdsnap/internal/interfaces"
	"github.com/bobmcallan/holdsnap/internal/models"
)

const (
	ProviderName = "finnhub"

	DefaultBaseURL   = "https://finnhub.io/api/v1"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 1 // requests per second; free tier allows 60/min
)

// Client implements the QuoteProvider interface for Finnhub. Finnhub serves
// US-listed symbols only; the resolver routes other markets elsewhere.
type Client struct {
	baseURL    string
	apiKey     string
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

// NewClient creates a new Finnhub client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
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

// Supports reports whether the market is served by Finnhub.
func (c *Client) Supports(market models.Market) bool {
	return market == models.MarketUS
}

// quoteResponse is the Finnhub /quote payload. All-zero fields mean the
// symbol is unknown; Finnhub returns 200 with zeros rather than 404.
type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePct     float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// FetchQuote retrieves a real-time quote for a US-listed ticker.
func (c *Client) FetchQuote(ctx context.Context, identity models.AssetIdentity) (*models.Quote, error) {
	if c.apiKey == "" {
		return nil, models.NewProviderError(ProviderName, models.ErrAuthError, "API key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "rate limit wait: %v", err)
	}

	params := url.Values{}
	params.Set("symbol", identity.Ticker)
	params.Set("token", c.apiKey)
	reqURL := fmt.Sprintf("%s/quote?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "failed to create request: %v", err)
	}

	c.logger.Debug().Str("ticker", identity.Ticker).Msg("Finnhub quote request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and transport faults fall through to the next provider
		if errors.Is(err, context.Canceled) {
			return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "request cancelled")
		}
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "request failed: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, models.NewProviderError(ProviderName, models.ErrRateLimited, "HTTP 429")
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, models.NewProviderError(ProviderName, models.ErrAuthError, "HTTP %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "HTTP %d: %s", resp.StatusCode, string(body))
	}

	var qr quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "failed to decode response: %v", err)
	}

	if qr.Current <= 0 {
		return nil, models.NewProviderError(ProviderName, models.ErrNotFound, "no quote for %s", identity.Ticker)
	}

	asOf := time.Now().UTC()
	if qr.Timestamp > 0 {
		asOf = time.Unix(qr.Timestamp, 0).UTC()
	}

	changePct := qr.ChangePct
	if changePct == 0 && qr.PreviousClose > 0 {
		changePct = models.ChangePctFrom(qr.Current, qr.PreviousClose)
	}

	return &models.Quote{
		Ticker:     identity.Ticker,
		Price:      qr.Current,
		PriorClose: qr.PreviousClose,
		ChangePct:  changePct,
		AsOf:       asOf,
		Source:     ProviderName,
	}, nil
}

// Ensure Client implements QuoteProvider
var _ interfaces.QuoteProvider = (*Client)(nil)
