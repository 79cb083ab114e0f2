package interfaces

import (
	"context"

	"github.com/bobmcallan/holdsnap/internal/models"
)

// QuoteResolver resolves quotes through the configured provider chain.
type QuoteResolver interface {
	// Resolve tries providers in priority order and returns the first
	// quote with a positive price, or a ResolutionFailure listing one
	// attempt per provider in order. The chain for a single identity is
	// strictly sequential.
	Resolve(ctx context.Context, identity models.AssetIdentity) (*models.Quote, *models.ResolutionFailure)

	// ResolveAll resolves quotes for independent identities concurrently
	// through a bounded worker pool. Results are indexed to match the
	// input slice. Returns ctx.Err() if the run was cancelled.
	ResolveAll(ctx context.Context, identities []models.AssetIdentity) ([]Resolution, error)
}

// Resolution is the outcome of resolving one identity. Exactly one of
// Quote or Failure is set.
type Resolution struct {
	Quote   *models.Quote
	Failure *models.ResolutionFailure
}

// HoldingsSource produces the holdings records the pipeline consumes.
type HoldingsSource interface {
	// Load reads and parses the holdings input, preserving source order.
	Load(ctx context.Context) ([]models.HoldingRecord, error)
}

// SnapshotService runs the full pipeline: normalize, resolve, enrich, export.
type SnapshotService interface {
	// Run executes one pipeline invocation and writes the snapshot to the
	// configured output path. Only export-stage I/O failures (and
	// cancellation) are run-level errors.
	Run(ctx context.Context) (*models.Snapshot, error)
}
