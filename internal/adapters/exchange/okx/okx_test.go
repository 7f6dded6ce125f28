package okxadapter

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
		if r.URL.Path != "/api/v5/market/books" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if got := r.URL.Query().Get("instId"); got != "BTC-USDT" {
			t.Errorf("instId=%s want=BTC-USDT", got)
		}
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[{"asks":[["101","1","0","1"]],"bids":[["100","1","0","2"],["99","2","0","1"]],"ts":"1"}]}`))
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
		_, _ = w.Write([]byte(`{"code":"51001","msg":"Instrument ID does not exist","data":[]}`))
	}))
	defer srv.Close()

	_, err := New(rest.Options{BaseURL: srv.URL}).FetchDepth(context.Background(), "BTC")
	if domain.KindOf(err) != domain.Schema {
		t.Fatalf("err=%v want schema", err)
	}
}
