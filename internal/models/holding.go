// Package models defines data structures for Holdsnap
package models

import (
	"strings"
	"time"
)

// Market identifies the listing market of an asset.
type Market string

const (
	MarketCN Market = "CN" // domestic (mainland China) equities, 6-digit codes
	MarketUS Market = "US" // US-listed equities and ETFs
	MarketHK Market = "HK" // Hong Kong equities, 5-digit codes
)

// Currency is the trading currency of a market.
type Currency string

const (
	CurrencyCNY Currency = "CNY"
	CurrencyUSD Currency = "USD"
	CurrencyHKD Currency = "HKD"
)

// CurrencyFor returns the trading currency of a market.
func CurrencyFor(market Market) Currency {
	switch market {
	case MarketCN:
		return CurrencyCNY
	case MarketHK:
		return CurrencyHKD
	default:
		return CurrencyUSD
	}
}

// RestrictedUnitPrefix marks compensation-derived holdings (e.g. "RSU_AMZN")
// that are priced via the underlying tradable ticker.
const RestrictedUnitPrefix = "RSU_"

// HoldingRecord is one manually-maintained holdings entry as produced by the
// holdings parser. Immutable once constructed.
type HoldingRecord struct {
	RawCode         string    `json:"raw_code"`
	Name            string    `json:"name"`
	CostBasis       float64   `json:"cost_basis"` // per-unit cost in the asset's currency
	Quantity        float64   `json:"quantity"`
	AcquisitionDate time.Time `json:"acquisition_date,omitzero"` // zero value means unknown
}

// AssetIdentity is the canonical identity derived from a raw holding code.
// Ticker is always the tradable underlying symbol; RawCode is preserved
// unmodified for traceability back to the source record.
type AssetIdentity struct {
	RawCode          string   `json:"raw_code"`
	Ticker           string   `json:"ticker"`
	Market           Market   `json:"market"`
	Currency         Currency `json:"currency"`
	IsRestrictedUnit bool     `json:"is_restricted_unit"`
}

// cnExchange returns "SS" (Shanghai) or "SZ" (Shenzhen) for a 6-digit
// mainland code. Codes starting 6 or 9 list on Shanghai, as do 5xxxxx ETFs;
// everything else (0, 3, 1xxxxx ETFs) lists on Shenzhen.
func cnExchange(code string) string {
	switch {
	case strings.HasPrefix(code, "6"), strings.HasPrefix(code, "9"), strings.HasPrefix(code, "5"):
		return "SS"
	default:
		return "SZ"
	}
}

// YahooSymbol returns the Yahoo Finance symbol for this identity
// (e.g. "AAPL", "600519.SS", "0700.HK").
func (a AssetIdentity) YahooSymbol() string {
	switch a.Market {
	case MarketCN:
		return a.Ticker + "." + cnExchange(a.Ticker)
	case MarketHK:
		// Yahoo uses 4-digit HK codes: "00700" -> "0700.HK"
		code := a.Ticker
		if len(code) == 5 && strings.HasPrefix(code, "0") {
			code = code[1:]
		}
		return code + ".HK"
	default:
		return a.Ticker
	}
}

// SinaSymbol returns the Sina quote-list symbol for this identity
// (e.g. "sh600519", "sz000001", "rt_hk00700"). Empty for US tickers,
// which the Sina adapter does not serve.
func (a AssetIdentity) SinaSymbol() string {
	switch a.Market {
	case MarketCN:
		if cnExchange(a.Ticker) == "SS" {
			return "sh" + a.Ticker
		}
		return "sz" + a.Ticker
	case MarketHK:
		return "rt_hk" + a.Ticker
	default:
		return ""
	}
}
