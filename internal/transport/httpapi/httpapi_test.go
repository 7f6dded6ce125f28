package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"networth/internal/domain"
	"networth/internal/usecase/report"
)

type fakeReports struct {
	btcErr  error
	lastBTC report.BTCRequest
	block   chan struct{}
	started chan struct{}
}

func (f *fakeReports) BTC(_ context.Context, req report.BTCRequest) (report.BTCReport, error) {
	f.lastBTC = req
	if f.btcErr != nil {
		return report.BTCReport{SkippedSources: []domain.SkippedSource{{Source: "okx", Reason: "transport: timeout"}}}, f.btcErr
	}
	return report.BTCReport{ID: "r1", Coin: "BTC"}, nil
}

func (f *fakeReports) Equities(context.Context, report.EquityRequest) (report.EquityReport, error) {
	if f.block != nil {
		f.started <- struct{}{}
		<-f.block
	}
	return report.EquityReport{ID: "e1", TotalRealizedUSD: 42}, nil
}

type fakeBooks struct {
	books []domain.SourcedDepth
	err   error
}

func (f fakeBooks) Sources() []string { return nil }

func (f fakeBooks) FetchAll(context.Context, string) ([]domain.SourcedDepth, []domain.SkippedSource, error) {
	return f.books, nil, f.err
}

func newTestServer(reps *fakeReports, books fakeBooks) *httptest.Server {
	s := New(":0", reps, books, http.NotFoundHandler(), zerolog.Nop())
	return httptest.NewServer(s.Handler())
}

func TestHealthAndCORS(t *testing.T) {
	srv := newTestServer(&fakeReports{}, fakeBooks{})
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("status=%d headers=%v", resp.StatusCode, resp.Header)
	}

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/btc", nil)
	pre, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	pre.Body.Close()
	if pre.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight status=%d", pre.StatusCode)
	}
}

func TestBTCEndpoint(t *testing.T) {
	reps := &fakeReports{}
	srv := newTestServer(reps, fakeBooks{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/btc?btc=2500&coin=eth")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var rep report.BTCReport
	_ = json.NewDecoder(resp.Body).Decode(&rep)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || rep.ID != "r1" {
		t.Fatalf("status=%d rep=%+v", resp.StatusCode, rep)
	}
	if reps.lastBTC.Coin != "ETH" || reps.lastBTC.Quantity == nil || *reps.lastBTC.Quantity != 2500 {
		t.Fatalf("request=%+v", reps.lastBTC)
	}

	for _, bad := range []string{"abc", "-1", "NaN", "Inf"} {
		resp, err := http.Get(srv.URL + "/api/btc?btc=" + bad)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("btc=%s status=%d want 400", bad, resp.StatusCode)
		}
	}
}

func TestBTCEndpointAllFailed(t *testing.T) {
	reps := &fakeReports{btcErr: fmt.Errorf("btc report: %w", domain.ErrAllSourcesFailed)}
	srv := newTestServer(reps, fakeBooks{})
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/api/btc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusBadGateway || len(body.Skipped) != 1 {
		t.Fatalf("status=%d body=%+v", resp.StatusCode, body)
	}
}

func TestEquitiesSingleFlight(t *testing.T) {
	reps := &fakeReports{block: make(chan struct{}), started: make(chan struct{}, 1)}
	srv := newTestServer(reps, fakeBooks{})
	defer srv.Close()

	done := make(chan int, 1)
	go func() {
		resp, err := http.Get(srv.URL + "/api/equities")
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	<-reps.started

	resp, err := http.Get(srv.URL + "/api/equities")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request status=%d want 429", resp.StatusCode)
	}
	close(reps.block)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("first request status=%d", code)
	}
}

func TestMidEndpoint(t *testing.T) {
	books := fakeBooks{books: []domain.SourcedDepth{
		{Source: "okx", Depth: domain.DepthSnapshot{Bids: []domain.PriceLevel{{Price: 99, Size: 1}}, Asks: []domain.PriceLevel{{Price: 101, Size: 1}}}},
		{Source: "gate", Depth: domain.DepthSnapshot{Bids: []domain.PriceLevel{{Price: 101, Size: 1}}, Asks: []domain.PriceLevel{{Price: 103, Size: 1}}}},
	}}
	srv := newTestServer(&fakeReports{}, books)
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/api/mid?coin=btc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var mid MidResponse
	_ = json.NewDecoder(resp.Body).Decode(&mid)
	if mid.Coin != "BTC" || mid.Mid != 101 || len(mid.Venues) != 2 {
		t.Fatalf("mid=%+v", mid)
	}

	failed := newTestServer(&fakeReports{}, fakeBooks{err: domain.ErrAllSourcesFailed})
	defer failed.Close()
	r2, err := http.Get(failed.URL + "/api/mid")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	r2.Body.Close()
	if r2.StatusCode != http.StatusBadGateway {
		t.Fatalf("status=%d want 502", r2.StatusCode)
	}
}
