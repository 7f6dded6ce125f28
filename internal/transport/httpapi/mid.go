package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"networth/internal/domain"
	"networth/internal/usecase/orderbook"
)

// handleMid обрабатывает GET /api/mid?coin=ETH: медиана mid-цен по всем ответившим площадкам.
func (s *Server) handleMid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	coin := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("coin")))
	if coin == "" {
		coin = "BTC"
	}
	if coin == "USDT" || coin == "USD" {
		writeJSON(w, http.StatusOK, MidResponse{Coin: coin, Mid: 1})
		return
	}

	books, skipped, err := s.books.FetchAll(r.Context(), coin)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrAllSourcesFailed) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, ErrorResponse{Error: "failed to fetch order books: " + err.Error(), Skipped: skipped})
		return
	}
	mid, venues := orderbook.MedianMid(books)
	if mid == 0 {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no usable prices for " + coin, Skipped: skipped})
		return
	}
	writeJSON(w, http.StatusOK, MidResponse{Coin: coin, Mid: mid, Venues: venues, Skipped: skipped})
}
