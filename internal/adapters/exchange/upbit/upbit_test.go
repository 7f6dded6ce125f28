package upbitadapter

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"networth/internal/adapters/exchange/rest"
	"networth/internal/domain"
)

const body = `[{"market":"KRW-BTC","orderbook_units":[
 {"ask_price":135100000,"bid_price":135000000,"ask_size":0.5,"bid_size":0.25},
 {"ask_price":135200000,"bid_price":134900000,"ask_size":1.0,"bid_size":0}
]}]`

func TestFetchDepthConvertsKRW(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("markets") != "KRW-BTC" {
			t.Errorf("markets=%s", r.URL.Query().Get("markets"))
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	fx := domain.FXRate{Pair: "KRW", QuotePerUSD: 1350, AsOf: time.Now()}
	d, err := New(rest.Options{BaseURL: srv.URL}, fx).FetchDepth(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(d.Bids) != 1 {
		t.Fatalf("bids=%+v want one (zero size dropped)", d.Bids)
	}
	if math.Abs(d.Bids[0].Price-100000) > 1e-6 || d.Bids[0].Size != 0.25 {
		t.Fatalf("bid=%+v want 100000x0.25", d.Bids[0])
	}
	if len(d.Asks) != 2 {
		t.Fatalf("asks=%+v", d.Asks)
	}
}

func TestFetchDepthRequiresFX(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request must not be sent without fx rate")
	}))
	defer srv.Close()

	_, err := New(rest.Options{BaseURL: srv.URL}, domain.FXRate{}).FetchDepth(context.Background(), "BTC")
	if domain.KindOf(err) != domain.Schema {
		t.Fatalf("err=%v want schema", err)
	}
}

func TestFetchDepthMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := New(rest.Options{BaseURL: srv.URL}, domain.FXRate{QuotePerUSD: 1300}).FetchDepth(context.Background(), "KRW-BTC")
	if domain.KindOf(err) != domain.Schema {
		t.Fatalf("err=%v want schema", err)
	}
}
