package snapshot

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdsnap/internal/models"
)

// enrichPosition combines a holdings record, its canonical identity, and the
// resolution outcome into a snapshot position. Derived values use decimal
// arithmetic rounded to two places. A missing quote never drops the
// position: quantity and cost basis stay populated so downstream
// consolidation still sees it, with fetch_error carrying the attempt
// summary instead of a price.
func enrichPosition(record models.HoldingRecord, identity models.AssetIdentity, quote *models.Quote, failure *models.ResolutionFailure, now time.Time) models.Position {
	pos := models.Position{
		RawCode:          identity.RawCode,
		Ticker:           identity.Ticker,
		Market:           identity.Market,
		Currency:         identity.Currency,
		IsRestrictedUnit: identity.IsRestrictedUnit,
		Name:             record.Name,
		Quantity:         record.Quantity,
		CostBasis:        record.CostBasis,
	}

	if quote == nil {
		summary := "no providers configured"
		if failure != nil {
			summary = failure.Summary()
		}
		pos.FetchError = &summary
		return pos
	}

	price := decimal.NewFromFloat(quote.Price)
	qty := decimal.NewFromFloat(record.Quantity)
	cost := decimal.NewFromFloat(record.CostBasis)

	pos.Price = floatPtr(quote.Price)
	pos.ChangePct = floatPtr(round2(decimal.NewFromFloat(quote.ChangePct)))
	pos.MarketValue = floatPtr(round2(price.Mul(qty)))
	pos.Source = quote.Source

	// Cost-basis-free positions (e.g. freshly vested restricted units)
	// have no meaningful P&L percentage.
	if record.CostBasis > 0 {
		pnl := price.Sub(cost).Div(cost).Mul(decimal.NewFromInt(100))
		pos.UnrealizedPnlPct = floatPtr(round2(pnl))
	}

	if !record.AcquisitionDate.IsZero() {
		days := int(now.Sub(record.AcquisitionDate).Hours() / 24)
		if days < 0 {
			days = 0
		}
		pos.HoldingDays = &days
	}

	return pos
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func floatPtr(f float64) *float64 {
	return &f
}
