// Package sina provides a client for the Sina realtime quote-list endpoint
package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/holdsnap/internal/common"
	"github.com/bobmcallan/holdsnap/internal/interfaces"
	"github.com/bobmcallan/holdsnap/internal/models"
)

const (
	ProviderName = "sina"

	DefaultBaseURL   = "https://hq.sinajs.cn"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the QuoteProvider interface for Sina's quote-list
// endpoint. Unauthenticated; serves mainland (sh/sz prefixes) and Hong
// Kong (rt_hk prefix) listings. The payload is a JavaScript assignment
// with comma-separated fields, not JSON.
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

// NewClient creates a new Sina quote client.
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

// Supports reports whether the market is served. Sina covers CN and HK.
func (c *Client) Supports(market models.Market) bool {
	return market == models.MarketCN || market == models.MarketHK
}

// FetchQuote retrieves a spot quote for a mainland or Hong Kong listing.
func (c *Client) FetchQuote(ctx context.Context, identity models.AssetIdentity) (*models.Quote, error) {
	symbol := identity.SinaSymbol()
	if symbol == "" {
		return nil, models.NewProviderError(ProviderName, models.ErrNotFound, "market %s not supported", identity.Market)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "rate limit wait: %v", err)
	}

	reqURL := fmt.Sprintf("%s/list=%s", c.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "failed to create request: %v", err)
	}
	// Sina rejects requests without a finance.sina.com.cn referer
	req.Header.Set("Referer", "https://finance.sina.com.cn")

	c.logger.Debug().Str("symbol", symbol).Msg("Sina quote request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "request failed: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, models.NewProviderError(ProviderName, models.ErrRateLimited, "HTTP 429")
	case resp.StatusCode != http.StatusOK:
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrTransientError, "failed to read response: %v", err)
	}

	fields, err := parseList(string(body))
	if err != nil {
		return nil, models.NewProviderError(ProviderName, models.ErrNotFound, "no quote for %s: %v", symbol, err)
	}

	var price, priorClose float64
	switch identity.Market {
	case models.MarketHK:
		// rt_hk fields: engName, name, open, prevClose, high, low, last, ...
		if len(fields) < 7 {
			return nil, models.NewProviderError(ProviderName, models.ErrNotFound, "short payload for %s", symbol)
		}
		price = parseFloat(fields[6])
		priorClose = parseFloat(fields[3])
	default:
		// sh/sz fields: name, open, prevClose, current, high, low, ...
		if len(fields) < 4 {
			return nil, models.NewProviderError(ProviderName, models.ErrNotFound, "short payload for %s", symbol)
		}
		price = parseFloat(fields[3])
		priorClose = parseFloat(fields[2])
	}

	if price <= 0 {
		return nil, models.NewProviderError(ProviderName, models.ErrNotFound, "no price for %s", symbol)
	}

	return &models.Quote{
		Ticker:     identity.Ticker,
		Price:      price,
		PriorClose: priorClose,
		ChangePct:  models.ChangePctFrom(price, priorClose),
		AsOf:       time.Now().UTC(),
		Source:     ProviderName,
	}, nil
}

// parseList extracts the comma-separated fields from a quote-list payload:
//
//	var hq_str_sh600519="NAME,1687.00,1690.00,1700.01,...";
//
// An empty string between the quotes means the symbol is unknown.
func parseList(body string) ([]string, error) {
	start := strings.Index(body, `"`)
	end := strings.LastIndex(body, `"`)
	if start < 0 || end <= start {
		return nil, fmt.Errorf("malformed payload")
	}
	inner := body[start+1 : end]
	if strings.TrimSpace(inner) == "" {
		return nil, fmt.Errorf("empty payload")
	}
	return strings.Split(inner, ","), nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Ensure Client implements QuoteProvider
var _ interfaces.QuoteProvider = (*Client)(nil)
