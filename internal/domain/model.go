package domain

import (
	"context"
	"math"
	"time"
)

// Базовые доменные сущности

// PriceLevel: один уровень стакана. Price и Size всегда конечны и > 0.
type PriceLevel struct {
	Price     float64 `json:"price"`
	Size      float64 `json:"size"`
	Synthetic bool    `json:"synthetic,omitempty"`
}

// DepthSnapshot: снимок стакана одной площадки.
// Synthetic=true, если весь стакан построен эвристикой (котировка без глубины).
type DepthSnapshot struct {
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Synthetic bool         `json:"synthetic,omitempty"`
}

type SourcedDepth struct {
	Source string        `json:"source"`
	Depth  DepthSnapshot `json:"depth"`
}

type AggregatedDepth struct {
	Bids           []PriceLevel `json:"bids"`
	Asks           []PriceLevel `json:"asks"`
	Sources        []string     `json:"sources"`
	SkippedSources []string     `json:"skippedSources"`
}

// LiquidationResult: итог прохода рыночной продажи по бидам.
// TotalToSell == SoldQuantity + UnsoldQuantity, Exhausted == UnsoldQuantity > 0.
type LiquidationResult struct {
	TotalToSell          float64           `json:"totalToSell"`
	SoldQuantity         float64           `json:"soldQuantity"`
	UnsoldQuantity       float64           `json:"unsoldQuantity"`
	RealizedProceeds     float64           `json:"realizedProceeds"`
	AverageRealizedPrice float64           `json:"averageRealizedPrice"`
	Exhausted            bool              `json:"exhausted"`
	LevelsConsumed       int               `json:"levelsConsumed"`
	SyntheticQuantity    float64           `json:"syntheticQuantity"`
	Breakdown            []SourceBreakdown `json:"breakdown,omitempty"`
}

type SourceBreakdown struct {
	Source            string  `json:"source"`
	SoldQuantity      float64 `json:"soldQuantity"`
	RealizedProceeds  float64 `json:"realizedProceeds"`
	AveragePrice      float64 `json:"averagePrice"`
	SyntheticQuantity float64 `json:"syntheticQuantity"`
}

type AugmentationSummary struct {
	Source               string  `json:"source"`
	OriginalBidCount     int     `json:"originalBidCount"`
	AugmentedBidCount    int     `json:"augmentedBidCount"`
	SyntheticLevelsAdded int     `json:"syntheticLevelsAdded"`
	ScaleFactor          float64 `json:"scaleFactor"`
	OriginalMinPrice     float64 `json:"originalMinPrice"`
	NewMinPrice          float64 `json:"newMinPrice"`
}

type PriceImpact struct {
	SpotPrice            float64 `json:"spotPrice"`
	AverageRealizedPrice float64 `json:"averageRealizedPrice"`
	PriceDifference      float64 `json:"priceDifference"`
	DiscountPercent      float64 `json:"discountPercent"`
}

// SpotQuote: текущая цена рынка. Bid/Ask/Volume24h равны 0, если площадка их не отдала.
type SpotQuote struct {
	Market    string  `json:"market"`
	Price     float64 `json:"price"`
	Bid       float64 `json:"bid,omitempty"`
	Ask       float64 `json:"ask,omitempty"`
	Volume24h float64 `json:"volume24h,omitempty"`
}

// FXRate: снимок курса: сколько единиц котируемой валюты за 1 USD.
type FXRate struct {
	Pair        string    `json:"pair"`
	QuotePerUSD float64   `json:"quotePerUsd"`
	AsOf        time.Time `json:"asOf"`
}

func (r FXRate) Valid() bool { return r.QuotePerUSD > 0 && IsFinite(r.QuotePerUSD) }

// Контракт адаптера площадки: один запрос на вызов, без ретраев.
type DepthSource interface {
	Name() string
	FetchDepth(ctx context.Context, market string) (DepthSnapshot, error)
}

type SpotSource interface {
	FetchSpotPrice(ctx context.Context, market string) (SpotQuote, error)
}

func IsFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// NormalizeLevels выбрасывает уровни с неположительной или неконечной ценой/объёмом.
// Порядок сохраняется.
func NormalizeLevels(xs []PriceLevel) []PriceLevel {
	out := make([]PriceLevel, 0, len(xs))
	for _, l := range xs {
		if l.Price > 0 && l.Size > 0 && IsFinite(l.Price) && IsFinite(l.Size) {
			out = append(out, l)
		}
	}
	return out
}
