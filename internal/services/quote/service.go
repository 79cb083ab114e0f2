// Package quote provides quote resolution with ordered provider failover
package quote

import (
	"context"
	"sync"

	"github.com/bobmcallan/holdsnap/internal/common"
	"github.com/bobmcallan/holdsnap/internal/interfaces"
	"github.com/bobmcallan/holdsnap/internal/models"
)

// DefaultConcurrency bounds the worker pool when the configured value is
// missing or invalid.
const DefaultConcurrency = 4

// Service implements QuoteResolver over an ordered provider chain.
// Real-time providers are rate-limited and preferred for freshness, but a
// single point of failure must never stall the whole snapshot: the chain
// degrades to a slower source rather than dropping the position.
type Service struct {
	providers   []interfaces.QuoteProvider // priority order, primary first
	concurrency int
	logger      *common.Logger
}

// NewService creates a quote resolver over providers in priority order.
func NewService(providers []interfaces.QuoteProvider, concurrency int, logger *common.Logger) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		providers:   providers,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Resolve tries providers strictly in order and short-circuits on the first
// quote with a positive price. Every failure is recorded; if all providers
// fail the full attempt list is returned in provider order. Providers that
// do not serve the identity's market are recorded as not_found without an
// HTTP call, so their rate budget is not spent.
func (s *Service) Resolve(ctx context.Context, identity models.AssetIdentity) (*models.Quote, *models.ResolutionFailure) {
	attempts := make([]models.Attempt, 0, len(s.providers))

	for _, p := range s.providers {
		if ctx.Err() != nil {
			attempts = append(attempts, models.Attempt{
				Provider: p.Name(),
				Kind:     models.ErrTransientError,
				Message:  "run cancelled",
			})
			continue
		}

		if !p.Supports(identity.Market) {
			attempts = append(attempts, models.Attempt{
				Provider: p.Name(),
				Kind:     models.ErrNotFound,
				Message:  "market " + string(identity.Market) + " not supported",
			})
			continue
		}

		q, err := p.FetchQuote(ctx, identity)
		if err == nil && q != nil && q.Price > 0 {
			s.logger.Debug().
				Str("ticker", identity.Ticker).
				Str("source", q.Source).
				Float64("price", q.Price).
				Msg("Quote resolved")
			return q, nil
		}

		attempt := models.Attempt{Provider: p.Name(), Kind: models.ErrTransientError}
		if perr, ok := err.(*models.ProviderError); ok {
			attempt.Kind = perr.Kind
			attempt.Message = perr.Message
		} else if err != nil {
			attempt.Message = err.Error()
		} else {
			// A zero or negative price is an absent quote, never propagated
			attempt.Kind = models.ErrNotFound
			attempt.Message = "zero price"
		}
		attempts = append(attempts, attempt)

		// An auth failure is a configuration problem the operator should
		// see even though the chain still falls through for this run.
		if attempt.Kind == models.ErrAuthError {
			s.logger.Warn().
				Str("provider", p.Name()).
				Str("ticker", identity.Ticker).
				Msg("Provider auth failed - check credentials")
		} else {
			s.logger.Debug().
				Str("provider", p.Name()).
				Str("ticker", identity.Ticker).
				Str("kind", string(attempt.Kind)).
				Msg("Provider attempt failed, trying next")
		}
	}

	return nil, &models.ResolutionFailure{Ticker: identity.Ticker, Attempts: attempts}
}

// ResolveAll resolves independent identities through a bounded worker pool.
// Concurrency is per-position only; the provider chain for a single
// identity stays sequential. Results are indexed to match the input slice,
// so assembly order never depends on completion timing. Returns ctx.Err()
// when the run is cancelled.
func (s *Service) ResolveAll(ctx context.Context, identities []models.AssetIdentity) ([]interfaces.Resolution, error) {
	results := make([]interfaces.Resolution, len(identities))

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, id := range identities {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, id models.AssetIdentity) {
			defer wg.Done()
			defer func() { <-sem }()

			q, failure := s.Resolve(ctx, id)
			results[i] = interfaces.Resolution{Quote: q, Failure: failure}
		}(i, id)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Ensure Service implements QuoteResolver
var _ interfaces.QuoteResolver = (*Service)(nil)
