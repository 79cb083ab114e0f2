package models

import "time"

// SchemaVersion is the snapshot document schema version. Consumers should
// reject documents with a major version they do not understand.
const SchemaVersion = "1.0"

// Position is one enriched holding in the snapshot. Numeric fields that
// could not be computed (missing quote, zero cost basis, unknown
// acquisition date) serialize as null rather than a fabricated zero.
// Exactly one of price or fetch_error is meaningful after enrichment.
type Position struct {
	RawCode          string   `json:"raw_code"`
	Ticker           string   `json:"ticker"`
	Market           Market   `json:"market"`
	Currency         Currency `json:"currency"`
	IsRestrictedUnit bool     `json:"is_restricted_unit"`
	Name             string   `json:"name"`
	Quantity         float64  `json:"quantity"`
	CostBasis        float64  `json:"cost_basis"`

	Price            *float64 `json:"price"`
	ChangePct        *float64 `json:"change_pct"`
	MarketValue      *float64 `json:"market_value"`
	UnrealizedPnlPct *float64 `json:"unrealized_pnl_pct"`
	HoldingDays      *int     `json:"holding_days"`
	Source           string   `json:"source,omitempty"`
	FetchError       *string  `json:"fetch_error"`
}

// Priced reports whether the position carries a resolved quote.
func (p Position) Priced() bool {
	return p.Price != nil
}

// Snapshot is the complete output document of one pipeline run. Positions
// preserve the input order of the holdings records regardless of resolution
// outcome or timing.
type Snapshot struct {
	GeneratedAt   time.Time  `json:"generated_at"`
	SchemaVersion string     `json:"schema_version"`
	RunID         string     `json:"run_id"`
	Positions     []Position `json:"positions"`
}
