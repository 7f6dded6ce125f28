package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"networth/internal/domain"
	"networth/internal/usecase/report"
)

type ReportFacade interface {
	BTC(ctx context.Context, req report.BTCRequest) (report.BTCReport, error)
	Equities(ctx context.Context, req report.EquityRequest) (report.EquityReport, error)
}

type Server struct {
	addr    string
	reports ReportFacade
	books   report.BookFetcher
	metrics http.Handler
	log     zerolog.Logger
	server  *http.Server

	// отчёт по акциям идёт минуту и упирается в лимит Alltick: одновременно только один
	equityBusy chan struct{}
}

// New: metrics может быть nil, тогда /metrics не регистрируется.
func New(addr string, reports ReportFacade, books report.BookFetcher, metrics http.Handler, logger zerolog.Logger) *Server {
	return &Server{
		addr:       addr,
		reports:    reports,
		books:      books,
		metrics:    metrics,
		log:        logger,
		equityBusy: make(chan struct{}, 1),
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/btc", s.handleBTC)
	mux.HandleFunc("/api/equities", s.handleEquities)
	mux.HandleFunc("/api/mid", s.handleMid)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return withCORS(mux)
}

func (s *Server) Handler() http.Handler { return s.routes() }

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Str("addr", s.addr).Msg("HTTP server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/btc?btc=<qty>&coin=<coin>
func (s *Server) handleBTC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	req := report.BTCRequest{Coin: strings.ToUpper(strings.TrimSpace(q.Get("coin")))}
	if raw := strings.TrimSpace(q.Get("btc")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(v >= 0) || !domain.IsFinite(v) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "btc must be a finite number >= 0"})
			return
		}
		req.Quantity = &v
	}

	rep, err := s.reports.BTC(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrAllSourcesFailed) {
			writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error(), Skipped: rep.SkippedSources})
			return
		}
		s.log.Error().Err(err).Msg("btc report failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// GET /api/equities
func (s *Server) handleEquities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	select {
	case s.equityBusy <- struct{}{}:
		defer func() { <-s.equityBusy }()
	default:
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "equity report already running, retry later"})
		return
	}

	rep, err := s.reports.Equities(r.Context(), report.EquityRequest{})
	if err != nil {
		s.log.Error().Err(err).Msg("equity report failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
