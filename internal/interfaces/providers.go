// Package interfaces defines service contracts for Holdsnap
package interfaces

import (
	"context"

	"github.com/bobmcallan/holdsnap/internal/models"
)

// QuoteProvider is the uniform contract every external quote source
// implements. Failures are reported as *models.ProviderError so the
// resolver can distinguish retryable from terminal conditions. Providers
// never retry beyond their own transport; retry and fallback policy
// belongs to the resolver.
type QuoteProvider interface {
	// Name returns the provider name as it appears in configuration and
	// in snapshot source fields.
	Name() string

	// Supports reports whether the provider can quote assets on the
	// given market. The resolver skips unsupported providers without
	// spending their rate budget.
	Supports(market models.Market) bool

	// FetchQuote retrieves a live quote for the identity's underlying
	// ticker. A successful quote always has Price > 0.
	FetchQuote(ctx context.Context, identity models.AssetIdentity) (*models.Quote, error)
}
