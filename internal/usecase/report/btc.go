package report

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"networth/internal/domain"
	"networth/internal/infra/metrics"
	"networth/internal/usecase/holdings"
	"networth/internal/usecase/orderbook"
)

type BTCRequest struct {
	Coin string
	// nil: берём Assumed из настроек
	Quantity *float64
}

type DepthStats struct {
	BidLevels int     `json:"bidLevels"`
	AskLevels int     `json:"askLevels"`
	BestBid   float64 `json:"bestBid"`
	BestAsk   float64 `json:"bestAsk"`
	// суммарный объём всех бидов после аугментации
	BidSize          float64 `json:"bidSize"`
	SyntheticBidSize float64 `json:"syntheticBidSize"`
}

type BTCReport struct {
	ID             string                       `json:"id"`
	GeneratedAt    time.Time                    `json:"generatedAt"`
	Coin           string                       `json:"coin"`
	Holdings       holdings.SatoshiEstimate     `json:"holdings"`
	Sources        []string                     `json:"sources"`
	SkippedSources []domain.SkippedSource       `json:"skippedSources"`
	Augmentation   []domain.AugmentationSummary `json:"augmentation,omitempty"`
	Depth          DepthStats                   `json:"depth"`
	Liquidation    domain.LiquidationResult     `json:"liquidation"`
	MedianMid      float64                      `json:"medianMid,omitempty"`
	Spot           *domain.SpotQuote            `json:"spot,omitempty"`
	Impact         *domain.PriceImpact          `json:"impact,omitempty"`
	FX             *domain.FXRate               `json:"fx,omitempty"`
	Notes          []string                     `json:"notes,omitempty"`
}

func (s *Service) BTC(ctx context.Context, req BTCRequest) (BTCReport, error) {
	coin := strings.ToUpper(strings.TrimSpace(req.Coin))
	if coin == "" {
		coin = "BTC"
	}
	if req.Quantity != nil && !(*req.Quantity >= 0 && !math.IsInf(*req.Quantity, 0)) {
		return BTCReport{}, fmt.Errorf("quantity must be a finite number >= 0, got %v", *req.Quantity)
	}
	if s.deps.Books == nil {
		return BTCReport{}, fmt.Errorf("btc report: no depth sources configured")
	}

	est := holdings.EstimateSatoshi(req.Quantity)
	if req.Quantity == nil && s.opts.Assumed > 0 {
		est.AssumedBTC = s.opts.Assumed
	}
	if s.opts.LowerBTC > 0 || s.opts.UpperBTC > 0 {
		est.LowerBTC, est.UpperBTC = s.opts.LowerBTC, s.opts.UpperBTC
	}

	rep := BTCReport{
		ID:          uuid.NewString(),
		GeneratedAt: s.now(),
		Coin:        coin,
		Holdings:    est,
	}

	books, skipped, err := s.deps.Books.FetchAll(ctx, coin)
	rep.SkippedSources = skipped
	if err != nil {
		return rep, fmt.Errorf("btc report: %w", err)
	}
	for _, b := range books {
		rep.Sources = append(rep.Sources, b.Source)
	}

	rep.MedianMid, _ = orderbook.MedianMid(books)

	if s.opts.Augment && s.opts.Reference != "" {
		augmented, summaries := orderbook.Augment(books, s.opts.Reference)
		if summaries == nil {
			rep.Notes = append(rep.Notes, fmt.Sprintf("Augmentation skipped: reference venue %s unavailable.", s.opts.Reference))
		}
		books = augmented
		rep.Augmentation = summaries
		added := 0
		for _, a := range summaries {
			metrics.SyntheticLevelsAdded.WithLabelValues(a.Source).Set(float64(a.SyntheticLevelsAdded))
			added += a.SyntheticLevelsAdded
		}
		if added > 0 {
			rep.Notes = append(rep.Notes, fmt.Sprintf(
				"%d synthetic bid levels extrapolated from %s depth shape; synthetic quantity is reported separately.",
				added, s.opts.Reference))
		}
	}

	skippedNames := make([]string, 0, len(skipped))
	for _, sk := range skipped {
		skippedNames = append(skippedNames, sk.Source)
	}
	agg := orderbook.Merge(books, skippedNames)
	rep.Depth = depthStats(agg, books)

	rep.Liquidation = orderbook.SimulateMultiSource(books, est.AssumedBTC)
	if rep.Liquidation.Exhausted {
		metrics.LiquidationExhaustedTotal.WithLabelValues("btc").Inc()
		rep.Notes = append(rep.Notes, fmt.Sprintf("Visible depth exhausted: %.8f %s left unsold.", rep.Liquidation.UnsoldQuantity, coin))
	}

	if s.deps.Spot != nil {
		sctx, cancel := context.WithTimeout(ctx, s.opts.SpotTimeout)
		q, err := s.deps.Spot.FetchSpotPrice(sctx, coin)
		cancel()
		if err != nil {
			s.log.Warn().Err(err).Str("coin", coin).Msg("spot price unavailable, impact omitted")
			rep.Notes = append(rep.Notes, "Spot price unavailable; price impact omitted.")
		} else {
			rep.Spot = &q
			imp := orderbook.ComputePriceImpact(q.Price, rep.Liquidation.AverageRealizedPrice)
			rep.Impact = &imp
		}
	}

	if s.opts.FX.Valid() && contains(rep.Sources, "upbit") {
		fx := s.opts.FX
		rep.FX = &fx
		rep.Notes = append(rep.Notes, fmt.Sprintf("Upbit KRW prices converted at %.2f %s.", fx.QuotePerUSD, fx.Pair))
	}
	rep.Notes = append(rep.Notes, "USDT-quoted venues are treated as USD.")

	s.log.Info().Str("id", rep.ID).Str("coin", coin).Int("sources", len(rep.Sources)).Int("skipped", len(skipped)).
		Float64("sold", rep.Liquidation.SoldQuantity).Float64("proceeds", rep.Liquidation.RealizedProceeds).
		Bool("exhausted", rep.Liquidation.Exhausted).Msg("btc report ready")
	return rep, nil
}

func depthStats(agg domain.AggregatedDepth, books []domain.SourcedDepth) DepthStats {
	st := DepthStats{BidLevels: len(agg.Bids), AskLevels: len(agg.Asks)}
	if len(agg.Bids) > 0 {
		st.BestBid = agg.Bids[0].Price
	}
	if len(agg.Asks) > 0 {
		st.BestAsk = agg.Asks[0].Price
	}
	for _, l := range agg.Bids {
		st.BidSize += l.Size
	}
	// по исходным книгам: в агрегате уровень с примесью синтетики помечен целиком
	for _, b := range books {
		for _, l := range b.Depth.Bids {
			if l.Synthetic || b.Depth.Synthetic {
				st.SyntheticBidSize += l.Size
			}
		}
	}
	return st
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
