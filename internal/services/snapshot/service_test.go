package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bobmcallan/holdsnap/internal/common"
	"github.com/bobmcallan/holdsnap/internal/interfaces"
	"github.com/bobmcallan/holdsnap/internal/models"
)

type fakeSource struct {
	records []models.HoldingRecord
	err     error
}

func (f *fakeSource) Load(ctx context.Context) ([]models.HoldingRecord, error) {
	return f.records, f.err
}

// fakeResolver prices every identity at a fixed value, failing the tickers
// listed in fail.
type fakeResolver struct {
	fail map[string]bool
}

func (f *fakeResolver) Resolve(ctx context.Context, id models.AssetIdentity) (*models.Quote, *models.ResolutionFailure) {
	if f.fail[id.Ticker] {
		return nil, &models.ResolutionFailure{
			Ticker:   id.Ticker,
			Attempts: []models.Attempt{{Provider: "fake", Kind: models.ErrNotFound, Message: "no quote"}},
		}
	}
	return &models.Quote{
		Ticker: id.Ticker,
		Price:  100,
		AsOf:   time.Now().UTC(),
		Source: "fake",
	}, nil
}

func (f *fakeResolver) ResolveAll(ctx context.Context, ids []models.AssetIdentity) ([]interfaces.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]interfaces.Resolution, len(ids))
	for i, id := range ids {
		q, failure := f.Resolve(ctx, id)
		results[i] = interfaces.Resolution{Quote: q, Failure: failure}
	}
	return results, nil
}

func TestRun_ExportsPositionsInInputOrder(t *testing.T) {
	source := &fakeSource{records: []models.HoldingRecord{
		{RawCode: "600519", Name: "Kweichow Moutai", CostBasis: 1500, Quantity: 100},
		{RawCode: "AAPL", Name: "Apple", CostBasis: 150, Quantity: 10},
		{RawCode: "00700", Name: "Tencent", CostBasis: 300, Quantity: 200},
	}}
	path := filepath.Join(t.TempDir(), "snapshot.json")
	svc := NewService(source, &fakeResolver{}, path, common.NewSilentLogger())

	snap, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(snap.Positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(snap.Positions))
	}
	wantTickers := []string{"600519", "AAPL", "00700"}
	for i, want := range wantTickers {
		if snap.Positions[i].Ticker != want {
			t.Errorf("position %d: expected ticker %s, got %s", i, want, snap.Positions[i].Ticker)
		}
	}
	if snap.RunID == "" {
		t.Error("expected a run ID")
	}
	if snap.SchemaVersion != models.SchemaVersion {
		t.Errorf("expected schema version %s, got %s", models.SchemaVersion, snap.SchemaVersion)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected snapshot file at %s: %v", path, err)
	}
}

func TestRun_DropsUnrecognizedCodes(t *testing.T) {
	source := &fakeSource{records: []models.HoldingRecord{
		{RawCode: "AAPL", CostBasis: 150, Quantity: 10},
		{RawCode: "not-a-code!", CostBasis: 1, Quantity: 1},
		{RawCode: "MSFT", CostBasis: 300, Quantity: 5},
	}}
	path := filepath.Join(t.TempDir(), "snapshot.json")
	svc := NewService(source, &fakeResolver{}, path, common.NewSilentLogger())

	snap, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(snap.Positions) != 2 {
		t.Fatalf("expected 2 positions after dropping, got %d", len(snap.Positions))
	}
	if snap.Positions[0].Ticker != "AAPL" || snap.Positions[1].Ticker != "MSFT" {
		t.Error("surviving positions must keep input order")
	}
}

func TestRun_FailedQuoteKeepsPosition(t *testing.T) {
	source := &fakeSource{records: []models.HoldingRecord{
		{RawCode: "AAPL", CostBasis: 150, Quantity: 10},
		{RawCode: "MSFT", CostBasis: 300, Quantity: 5},
	}}
	resolver := &fakeResolver{fail: map[string]bool{"MSFT": true}}
	path := filepath.Join(t.TempDir(), "snapshot.json")
	svc := NewService(source, resolver, path, common.NewSilentLogger())

	snap, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(snap.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(snap.Positions))
	}
	msft := snap.Positions[1]
	if msft.Priced() {
		t.Error("expected MSFT to be unpriced")
	}
	if msft.FetchError == nil {
		t.Fatal("expected fetch error on failed position")
	}
	if msft.Quantity != 5 || msft.CostBasis != 300 {
		t.Error("holding data must survive a failed fetch")
	}
}

func TestRun_SourceErrorAbortsRun(t *testing.T) {
	source := &fakeSource{err: errors.New("holdings file missing")}
	path := filepath.Join(t.TempDir(), "snapshot.json")
	svc := NewService(source, &fakeResolver{}, path, common.NewSilentLogger())

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error when holdings cannot be loaded")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no snapshot file should be written on load failure")
	}
}

func TestRun_CancelledWritesNothing(t *testing.T) {
	source := &fakeSource{records: []models.HoldingRecord{
		{RawCode: "AAPL", CostBasis: 150, Quantity: 10},
	}}
	path := filepath.Join(t.TempDir(), "snapshot.json")
	svc := NewService(source, &fakeResolver{}, path, common.NewSilentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Run(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("a cancelled run must not write a snapshot file")
	}
}

func TestRun_GeneratedAtUsesInjectedClock(t *testing.T) {
	fixed := time.Date(2026, 8, 30, 9, 30, 15, 987654321, time.UTC)
	source := &fakeSource{records: []models.HoldingRecord{
		{RawCode: "AAPL", CostBasis: 150, Quantity: 10},
	}}
	path := filepath.Join(t.TempDir(), "snapshot.json")
	svc := NewService(source, &fakeResolver{}, path, common.NewSilentLogger())
	svc.now = func() time.Time { return fixed }

	snap, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := fixed.UTC().Truncate(time.Second)
	if !snap.GeneratedAt.Equal(want) {
		t.Errorf("expected generated_at %s, got %s", want, snap.GeneratedAt)
	}
}
