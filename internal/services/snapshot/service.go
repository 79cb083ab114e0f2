// Package snapshot enriches normalized holdings with resolved quotes and
// exports the canonical snapshot document.
package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/holdsnap/internal/common"
	"github.com/bobmcallan/holdsnap/internal/identity"
	"github.com/bobmcallan/holdsnap/internal/interfaces"
	"github.com/bobmcallan/holdsnap/internal/models"
)

// Service implements SnapshotService: normalize holdings, resolve quotes
// through the provider chain, enrich positions, export the document.
type Service struct {
	source     interfaces.HoldingsSource
	resolver   interfaces.QuoteResolver
	outputPath string
	logger     *common.Logger
	now        func() time.Time // injectable clock for testing
}

// NewService creates a snapshot service.
func NewService(source interfaces.HoldingsSource, resolver interfaces.QuoteResolver, outputPath string, logger *common.Logger) *Service {
	return &Service{
		source:     source,
		resolver:   resolver,
		outputPath: outputPath,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes one pipeline invocation. Every run constructs identities,
// quotes and positions from scratch; nothing is shared between runs.
// Quote-level failures are contained to single positions; only input read
// errors, cancellation, and export I/O failures are run-level errors.
// A cancelled run writes nothing.
func (s *Service) Run(ctx context.Context) (*models.Snapshot, error) {
	start := s.now()

	records, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Normalize, keeping holdings input order. Unrecognized codes cannot
	// be represented in the snapshot, so they are omitted, never silently.
	kept := make([]models.HoldingRecord, 0, len(records))
	identities := make([]models.AssetIdentity, 0, len(records))
	for _, record := range records {
		id, err := identity.Normalize(record.RawCode)
		if err != nil {
			s.logger.Warn().
				Str("code", record.RawCode).
				Err(err).
				Msg("Dropping position with unrecognized asset code")
			continue
		}
		kept = append(kept, record)
		identities = append(identities, id)
	}

	resolutions, err := s.resolver.ResolveAll(ctx, identities)
	if err != nil {
		return nil, err
	}

	positions := make([]models.Position, 0, len(kept))
	enrichedAt := s.now()
	for i, record := range kept {
		res := resolutions[i]
		positions = append(positions, enrichPosition(record, identities[i], res.Quote, res.Failure, enrichedAt))
	}

	snap := &models.Snapshot{
		GeneratedAt:   s.now().UTC().Truncate(time.Second),
		SchemaVersion: models.SchemaVersion,
		RunID:         uuid.NewString(),
		Positions:     positions,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := Export(snap, s.outputPath); err != nil {
		return nil, err
	}

	priced := 0
	for _, p := range positions {
		if p.Priced() {
			priced++
		}
	}
	s.logger.Info().
		Int("positions", len(positions)).
		Int("priced", priced).
		Int("unpriced", len(positions)-priced).
		Int("dropped", len(records)-len(kept)).
		Str("output", s.outputPath).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Snapshot exported")

	return snap, nil
}

// Ensure Service implements SnapshotService
var _ interfaces.SnapshotService = (*Service)(nil)
