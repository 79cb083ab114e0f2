package models

import "time"

// Quote holds a live price snapshot from one provider. A Quote is only
// constructed for a positive price; adapters report zero or negative
// prices as NotFound instead.
type Quote struct {
	Ticker     string    `json:"ticker"`
	Price      float64   `json:"price"`
	PriorClose float64   `json:"prior_close"`
	ChangePct  float64   `json:"change_pct"` // percentage change from prior close
	AsOf       time.Time `json:"as_of"`
	Source     string    `json:"source"` // provider name: "finnhub", "yahoo", "sina"
}

// ChangePctFrom computes the percentage change of price from a prior close,
// returning 0 when the prior close is unusable.
func ChangePctFrom(price, priorClose float64) float64 {
	if priorClose <= 0 {
		return 0
	}
	return (price - priorClose) / priorClose * 100
}
