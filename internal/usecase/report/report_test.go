package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"networth/internal/domain"
	"networth/internal/usecase/holdings"
)

type fakeBooks struct {
	books   []domain.SourcedDepth
	skipped []domain.SkippedSource
	err     error
	market  string
}

func (f *fakeBooks) Sources() []string { return []string{"coinbase", "okx", "gate"} }

func (f *fakeBooks) FetchAll(_ context.Context, market string) ([]domain.SourcedDepth, []domain.SkippedSource, error) {
	f.market = market
	return f.books, f.skipped, f.err
}

type fakeSpot struct {
	price float64
	err   error
}

func (f fakeSpot) FetchSpotPrice(_ context.Context, market string) (domain.SpotQuote, error) {
	if f.err != nil {
		return domain.SpotQuote{}, f.err
	}
	return domain.SpotQuote{Market: market, Price: f.price}, nil
}

type depthResult struct {
	depth domain.DepthSnapshot
	err   error
}

type fakeDepth struct {
	name    string
	byCode  map[string]depthResult
	queried []string
}

func (f *fakeDepth) Name() string { return f.name }

func (f *fakeDepth) FetchDepth(_ context.Context, code string) (domain.DepthSnapshot, error) {
	f.queried = append(f.queried, code)
	r, ok := f.byCode[code]
	if !ok {
		return domain.DepthSnapshot{}, domain.SchemaErr(f.name, "ret=600 code invalid")
	}
	return r.depth, r.err
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func bids(pairs ...float64) []domain.PriceLevel {
	var out []domain.PriceLevel
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.PriceLevel{Price: pairs[i], Size: pairs[i+1]})
	}
	return out
}

func newTestService(deps Deps, opts Options) (*Service, *[]time.Duration) {
	s := NewService(deps, opts, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	var sleeps []time.Duration
	s.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return s, &sleeps
}

func TestBTCReportAugmentsAndSweeps(t *testing.T) {
	fb := &fakeBooks{
		books: []domain.SourcedDepth{
			{Source: "coinbase", Depth: domain.DepthSnapshot{Bids: bids(100, 1, 90, 2, 80, 5), Asks: bids(101, 1)}},
			{Source: "okx", Depth: domain.DepthSnapshot{Bids: bids(99, 1), Asks: bids(100.5, 1)}},
		},
		skipped: []domain.SkippedSource{{Source: "gate", Kind: domain.Transport, Reason: "transport: http 503"}},
	}
	s, _ := newTestService(Deps{Books: fb, Spot: fakeSpot{price: 100}}, Options{Reference: "coinbase", Augment: true})
	q := 8.0
	rep, err := s.BTC(context.Background(), BTCRequest{Coin: "btc", Quantity: &q})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if fb.market != "BTC" || rep.Coin != "BTC" || rep.ID == "" {
		t.Fatalf("report header=%+v market=%s", rep, fb.market)
	}
	if len(rep.Augmentation) != 1 || rep.Augmentation[0].SyntheticLevelsAdded != 2 {
		t.Fatalf("augmentation=%+v", rep.Augmentation)
	}
	liq := rep.Liquidation
	// 100 + 99 + 90*2 (coinbase) + 90*2 (okx, synthetic) + 80*2 (coinbase)
	if !near(liq.RealizedProceeds, 719) || !near(liq.SoldQuantity, 8) || liq.Exhausted {
		t.Fatalf("liquidation=%+v", liq)
	}
	if !near(liq.SyntheticQuantity, 2) {
		t.Fatalf("synthetic=%.4f want 2", liq.SyntheticQuantity)
	}
	if rep.Impact == nil || !near(rep.Impact.DiscountPercent, 1-719.0/8/100) {
		t.Fatalf("impact=%+v", rep.Impact)
	}
	if len(rep.SkippedSources) != 1 || rep.SkippedSources[0].Source != "gate" {
		t.Fatalf("skipped=%+v", rep.SkippedSources)
	}
	if rep.Depth.BestBid != 100 || rep.Depth.BestAsk != 100.5 || !near(rep.Depth.SyntheticBidSize, 7) {
		t.Fatalf("depth=%+v", rep.Depth)
	}
	if !near(rep.MedianMid, (100.5+99.75)/2) {
		t.Fatalf("median mid=%.4f", rep.MedianMid)
	}
	if rep.Holdings.LowerBTC != holdings.SatoshiLower {
		t.Fatalf("holdings=%+v", rep.Holdings)
	}
}

func TestBTCReportDefaultsAndExhaustion(t *testing.T) {
	fb := &fakeBooks{books: []domain.SourcedDepth{{Source: "okx", Depth: domain.DepthSnapshot{Bids: bids(50, 10)}}}}
	s, _ := newTestService(Deps{Books: fb, Spot: fakeSpot{err: errors.New("down")}}, Options{Reference: "coinbase", Augment: true})
	rep, err := s.BTC(context.Background(), BTCRequest{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if rep.Liquidation.TotalToSell != holdings.SatoshiAssumed || !rep.Liquidation.Exhausted {
		t.Fatalf("liquidation=%+v", rep.Liquidation)
	}
	if rep.Impact != nil || rep.Spot != nil {
		t.Fatalf("spot failure must omit impact")
	}
	joined := strings.Join(rep.Notes, "\n")
	for _, want := range []string{"reference venue coinbase unavailable", "exhausted", "Spot price unavailable"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("notes missing %q: %s", want, joined)
		}
	}
}

func TestBTCReportAllSourcesFailed(t *testing.T) {
	fb := &fakeBooks{
		err:     fmt.Errorf("%w (okx: transport: timeout)", domain.ErrAllSourcesFailed),
		skipped: []domain.SkippedSource{{Source: "okx", Reason: "transport: timeout"}},
	}
	s, _ := newTestService(Deps{Books: fb}, Options{})
	rep, err := s.BTC(context.Background(), BTCRequest{})
	if !errors.Is(err, domain.ErrAllSourcesFailed) {
		t.Fatalf("err=%v want ErrAllSourcesFailed", err)
	}
	if len(rep.SkippedSources) != 1 {
		t.Fatalf("skipped must be reported even on failure: %+v", rep.SkippedSources)
	}
}

func TestBTCReportRejectsBadQuantity(t *testing.T) {
	s, _ := newTestService(Deps{Books: &fakeBooks{}}, Options{})
	for _, q := range []float64{-1, math.NaN(), math.Inf(1)} {
		q := q
		if _, err := s.BTC(context.Background(), BTCRequest{Quantity: &q}); err == nil {
			t.Fatalf("quantity %v must be rejected", q)
		}
	}
}

func TestEquitiesSourcesAndThrottle(t *testing.T) {
	alltick := &fakeDepth{name: "alltick", byCode: map[string]depthResult{
		"A.X": {depth: domain.DepthSnapshot{Bids: bids(10, 100)}},
		"B.US": {err: &domain.FetchError{Source: "alltick", Kind: domain.Schema, Err: domain.ErrEmptyBook}},
		"C.US": {err: domain.TransportErr("alltick", errors.New("http 502"))},
		"D.US": {depth: domain.DepthSnapshot{Asks: bids(5, 1)}},
	}}
	yahoo := &fakeDepth{name: "yahoo-synthetic", byCode: map[string]depthResult{
		"B": {depth: domain.DepthSnapshot{Bids: []domain.PriceLevel{{Price: 20, Size: 10, Synthetic: true}}, Synthetic: true}},
	}}
	deps := Deps{
		EquityDepth:    alltick,
		EquityFallback: yahoo,
		EquitySpot:     fakeSpot{price: 10},
		EquityCodes:    func(s string) []string { return []string{s + ".US", s + ".X"} },
	}
	s, sleeps := newTestService(deps, Options{Throttle: 5 * time.Second})
	hs := []holdings.EquityHolding{
		{Symbol: "A", Shares: 50}, {Symbol: "B", Shares: 5}, {Symbol: "C", Shares: 1}, {Symbol: "D", Shares: 1},
	}
	rep, err := s.Equities(context.Background(), EquityRequest{Holdings: hs})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(*sleeps) != 3 || (*sleeps)[0] != 5*time.Second {
		t.Fatalf("sleeps=%v want 3x5s", *sleeps)
	}
	got := map[string]StockResult{}
	for _, r := range rep.PerStock {
		got[r.Symbol] = r
	}
	if a := got["A"]; a.OrderBookSource != SourceAlltick || a.Code != "A.X" || !near(a.Liquidation.RealizedProceeds, 500) {
		t.Fatalf("A=%+v", a)
	}
	if a := got["A"]; a.Impact == nil || !near(a.Impact.DiscountPercent, 0) {
		t.Fatalf("A impact=%+v", a.Impact)
	}
	if b := got["B"]; b.OrderBookSource != SourceYahooSynthetic || !near(b.Liquidation.SyntheticQuantity, 5) || !near(b.Liquidation.RealizedProceeds, 100) {
		t.Fatalf("B=%+v", b)
	}
	if c := got["C"]; c.OrderBookSource != SourceAlltickError || !c.Liquidation.Exhausted || c.ErrorMessage == "" {
		t.Fatalf("C=%+v", c)
	}
	if d := got["D"]; d.OrderBookSource != SourceAlltickEmpty || d.ErrorMessage != "empty depth" || d.Liquidation.UnsoldQuantity != 1 {
		t.Fatalf("D=%+v", d)
	}
	if !near(rep.TotalRealizedUSD, 600) {
		t.Fatalf("total=%.2f want 600", rep.TotalRealizedUSD)
	}
	if len(rep.Notes) != 2 || rep.Notes[0] != EquityNote {
		t.Fatalf("notes=%v", rep.Notes)
	}
}

func TestEquitiesDefaultsToGatesAndStopsOnCancel(t *testing.T) {
	s, _ := newTestService(Deps{EquityDepth: &fakeDepth{name: "alltick"}}, Options{})
	s.sleep = func(ctx context.Context, _ time.Duration) error { return context.Canceled }
	rep, err := s.Equities(context.Background(), EquityRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want canceled", err)
	}
	if len(rep.Holdings) != 7 || len(rep.PerStock) != 1 || rep.PerStock[0].OrderBookSource != SourceAlltickError {
		t.Fatalf("report=%+v", rep)
	}
	if !strings.Contains(rep.PerStock[0].ErrorMessage, "ret=600") {
		t.Fatalf("error message=%q", rep.PerStock[0].ErrorMessage)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 200)
	if got := truncate(long, maxErrorLen); len(got) != 160 {
		t.Fatalf("len=%d", len(got))
	}
	if truncate("short", maxErrorLen) != "short" {
		t.Fatalf("short strings must pass through")
	}
}
