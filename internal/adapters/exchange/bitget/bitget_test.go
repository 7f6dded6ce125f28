package bitgetadapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"networth/internal/adapters/exchange/rest"
	"networth/internal/domain"
)

func TestFetchDepth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/spot/market/orderbook" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol=%s want=BTCUSDT", got)
		}
		_, _ = w.Write([]byte(`{"code":"00000","msg":"success","data":{"asks":[["101","1"]],"bids":[["100","1"],["99","2"]],"ts":"1"}}`))
	}))
	defer srv.Close()

	d, err := New(rest.Options{BaseURL: srv.URL}).FetchDepth(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(d.Bids) != 2 || d.Bids[0].Price != 100 || d.Bids[1].Size != 2 {
		t.Fatalf("bids=%+v", d.Bids)
	}
	if len(d.Asks) != 1 {
		t.Fatalf("asks=%+v", d.Asks)
	}
}

func TestFetchDepthAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"40034","msg":"Parameter does not exist"}`))
	}))
	defer srv.Close()

	_, err := New(rest.Options{BaseURL: srv.URL}).FetchDepth(context.Background(), "BTC")
	if domain.KindOf(err) != domain.Schema {
		t.Fatalf("err=%v want schema", err)
	}
}
