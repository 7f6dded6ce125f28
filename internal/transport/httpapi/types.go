package httpapi

import "networth/internal/domain"

// MidResponse: ответ на /api/mid: медиана mid-цен по площадкам, USD(T) за 1 <coin>.
type MidResponse struct {
	Coin    string                 `json:"coin"`
	Mid     float64                `json:"mid"`
	Venues  []string               `json:"venues,omitempty"`
	Skipped []domain.SkippedSource `json:"skipped,omitempty"`
}

type ErrorResponse struct {
	Error   string                 `json:"error"`
	Skipped []domain.SkippedSource `json:"skipped,omitempty"`
}
