package identity

import (
	"errors"
	"testing"

	"github.com/bobmcallan/holdsnap/internal/models"
)

func TestNormalize_USTickers(t *testing.T) {
	for _, code := range []string{"A", "AAPL", "MSFT", "GOOGL", "BRK.B"} {
		id, err := Normalize(code)
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", code, err)
		}
		if id.Market != models.MarketUS {
			t.Errorf("Normalize(%q) market = %s, want US", code, id.Market)
		}
		if id.Currency != models.CurrencyUSD {
			t.Errorf("Normalize(%q) currency = %s, want USD", code, id.Currency)
		}
		if id.Ticker != code {
			t.Errorf("Normalize(%q) ticker = %q, want %q", code, id.Ticker, code)
		}
		if id.IsRestrictedUnit {
			t.Errorf("Normalize(%q) is_restricted_unit = true, want false", code)
		}
	}
}

func TestNormalize_RestrictedUnits(t *testing.T) {
	id, err := Normalize("RSU_AMZN")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if id.Ticker != "AMZN" {
		t.Errorf("ticker = %q, want AMZN", id.Ticker)
	}
	if !id.IsRestrictedUnit {
		t.Error("is_restricted_unit = false, want true")
	}
	if id.RawCode != "RSU_AMZN" {
		t.Errorf("raw_code = %q, want RSU_AMZN (preserved unmodified)", id.RawCode)
	}
	if id.Market != models.MarketUS {
		t.Errorf("market = %s, want US", id.Market)
	}
}

func TestNormalize_MainlandCodes(t *testing.T) {
	id, err := Normalize("600519")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if id.Market != models.MarketCN {
		t.Errorf("market = %s, want CN", id.Market)
	}
	if id.Currency != models.CurrencyCNY {
		t.Errorf("currency = %s, want CNY", id.Currency)
	}
}

func TestNormalize_HongKongCodes(t *testing.T) {
	id, err := Normalize("00700")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if id.Market != models.MarketHK {
		t.Errorf("market = %s, want HK", id.Market)
	}
	if id.Currency != models.CurrencyHKD {
		t.Errorf("currency = %s, want HKD", id.Currency)
	}
}

func TestNormalize_UnrecognizedCodes(t *testing.T) {
	for _, code := range []string{
		"",
		"aapl",    // lowercase
		"TOOLONG", // more than 5 letters
		"1234",    // neither 5 nor 6 digits
		"1234567", // too many digits
		"BRK.BB",  // two-letter dot suffix
		"RSU_",    // restricted prefix with no underlying
	} {
		_, err := Normalize(code)
		if err == nil {
			t.Errorf("Normalize(%q) succeeded, want ErrUnrecognizedAssetCode", code)
			continue
		}
		if !errors.Is(err, models.ErrUnrecognizedAssetCode) {
			t.Errorf("Normalize(%q) error = %v, want ErrUnrecognizedAssetCode", code, err)
		}
	}
}

func TestNormalize_TrimsWhitespace(t *testing.T) {
	id, err := Normalize(" AAPL ")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if id.Ticker != "AAPL" {
		t.Errorf("ticker = %q, want AAPL", id.Ticker)
	}
	if id.RawCode != "AAPL" {
		t.Errorf("raw_code = %q, want the trimmed code AAPL", id.RawCode)
	}

	id, err = Normalize("\tRSU_AMZN\n")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if id.RawCode != "RSU_AMZN" || id.Ticker != "AMZN" || !id.IsRestrictedUnit {
		t.Errorf("unexpected identity for padded restricted code: %+v", id)
	}

	// Whitespace inside the code is never tolerated.
	if _, err := Normalize("RSU_ AAPL"); !errors.Is(err, models.ErrUnrecognizedAssetCode) {
		t.Errorf("expected ErrUnrecognizedAssetCode for embedded space, got %v", err)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	first, err := Normalize("AAPL")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	second, err := Normalize("AAPL")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if first != second {
		t.Errorf("Normalize not deterministic: %+v != %+v", first, second)
	}
}
