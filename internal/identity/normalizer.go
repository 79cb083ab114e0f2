// Package identity normalizes raw holding codes into canonical asset identities.
package identity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bobmcallan/holdsnap/internal/models"
)

// Market classification patterns. US tickers are 1-5 uppercase letters with
// an optional single-letter dot suffix (BRK.B); mainland codes are 6 digits;
// Hong Kong codes are 5 digits. Anything else is unrecognized; ambiguous
// codes are rejected rather than guessed.
var (
	usTickerPattern = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z])?$`)
	cnCodePattern   = regexp.MustCompile(`^\d{6}$`)
	hkCodePattern   = regexp.MustCompile(`^\d{5}$`)
)

// Normalize maps a raw holding code to its canonical asset identity.
// Pure and deterministic: no I/O, no side effects. Surrounding whitespace
// is trimmed before any classification, so RawCode always equals the code
// that was actually classified.
func Normalize(rawCode string) (models.AssetIdentity, error) {
	rawCode = strings.TrimSpace(rawCode)
	ticker := rawCode
	restricted := false
	if strings.HasPrefix(ticker, models.RestrictedUnitPrefix) {
		ticker = strings.TrimPrefix(ticker, models.RestrictedUnitPrefix)
		restricted = true
	}

	var market models.Market
	switch {
	case cnCodePattern.MatchString(ticker):
		market = models.MarketCN
	case hkCodePattern.MatchString(ticker):
		market = models.MarketHK
	case usTickerPattern.MatchString(ticker):
		market = models.MarketUS
	default:
		return models.AssetIdentity{}, fmt.Errorf("%w: %q", models.ErrUnrecognizedAssetCode, rawCode)
	}

	return models.AssetIdentity{
		RawCode:          rawCode,
		Ticker:           ticker,
		Market:           market,
		Currency:         models.CurrencyFor(market),
		IsRestrictedUnit: restricted,
	}, nil
}
