package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/holdsnap/internal/models"
)

func usIdentity(ticker string) models.AssetIdentity {
	return models.AssetIdentity{
		RawCode:  ticker,
		Ticker:   ticker,
		Market:   models.MarketUS,
		Currency: models.CurrencyUSD,
	}
}

func TestFetchQuote_ParsesResponse(t *testing.T) {
	mockResp := map[string]interface{}{
		"c":  185.92,
		"d":  2.26,
		"dp": 1.23,
		"h":  186.40,
		"l":  183.92,
		"o":  184.35,
		"pc": 183.66,
		"t":  int64(1711670340),
	}

	var capturedQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	quote, err := client.FetchQuote(context.Background(), usIdentity("AAPL"))
	if err != nil {
		t.Fatalf("FetchQuote failed: %v", err)
	}

	if quote.Price != 185.92 {
		t.Errorf("expected price 185.92, got %.2f", quote.Price)
	}
	if quote.PriorClose != 183.66 {
		t.Errorf("expected prior close 183.66, got %.2f", quote.PriorClose)
	}
	if quote.ChangePct != 1.23 {
		t.Errorf("expected change_pct 1.23, got %.2f", quote.ChangePct)
	}
	if quote.Source != "finnhub" {
		t.Errorf("expected source finnhub, got %s", quote.Source)
	}
	if quote.Ticker != "AAPL" {
		t.Errorf("expected ticker AAPL, got %s", quote.Ticker)
	}
	if !strings.Contains(capturedQuery, "symbol=AAPL") || !strings.Contains(capturedQuery, "token=test-key") {
		t.Errorf("unexpected query: %s", capturedQuery)
	}
}

func TestFetchQuote_ZeroPriceIsNotFound(t *testing.T) {
	// Finnhub answers 200 with all-zero fields for unknown symbols
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"c":0,"d":0,"dp":0,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.FetchQuote(context.Background(), usIdentity("NOSUCH"))
	assertKind(t, err, models.ErrNotFound)
}

func TestFetchQuote_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.FetchQuote(context.Background(), usIdentity("AAPL"))
	assertKind(t, err, models.ErrRateLimited)
}

func TestFetchQuote_AuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.FetchQuote(context.Background(), usIdentity("AAPL"))
	assertKind(t, err, models.ErrAuthError)
}

func TestFetchQuote_MissingKeyFailsWithoutRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient("", WithBaseURL(srv.URL))
	_, err := client.FetchQuote(context.Background(), usIdentity("AAPL"))
	assertKind(t, err, models.ErrAuthError)
	if called {
		t.Error("no HTTP request should be made without an API key")
	}
}

func TestFetchQuote_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.FetchQuote(context.Background(), usIdentity("AAPL"))
	assertKind(t, err, models.ErrTransientError)
}

func TestFetchQuote_TimeoutIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	_, err := client.FetchQuote(context.Background(), usIdentity("AAPL"))
	assertKind(t, err, models.ErrTransientError)
}

func TestFetchQuote_ConnectionFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.FetchQuote(context.Background(), usIdentity("AAPL"))
	assertKind(t, err, models.ErrTransientError)
}

func TestSupports(t *testing.T) {
	client := NewClient("test-key")
	if !client.Supports(models.MarketUS) {
		t.Error("expected US to be supported")
	}
	if client.Supports(models.MarketCN) || client.Supports(models.MarketHK) {
		t.Error("expected CN/HK to be unsupported")
	}
}

func assertKind(t *testing.T, err error, kind models.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var perr *models.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
	if perr.Kind != kind {
		t.Errorf("expected kind %s, got %s (%s)", kind, perr.Kind, perr.Message)
	}
}
