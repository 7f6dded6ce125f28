package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"networth/internal/domain"
	"networth/internal/infra/metrics"
	"networth/internal/usecase/holdings"
	"networth/internal/usecase/orderbook"
)

// Происхождение стакана в строке отчёта по акции.
const (
	SourceAlltick        = "alltick"
	SourceYahooSynthetic = "yahoo-synthetic"
	SourceAlltickEmpty   = "alltick-empty"
	SourceAlltickError   = "alltick-error"
)

const (
	maxErrorLen = 160
	EquityNote  = "Liquidation uses Alltick L2 depth (multi-gear). Totals reflect available levels; " +
		"symbols marked 'alltick-error' likely lacked a valid code mapping (ret=600)."
	syntheticNote = "Rows sourced from 'yahoo-synthetic' use heuristic depth derived from quote and daily volume, not real L2."
)

type EquityRequest struct {
	// nil: корзина Гейтса
	Holdings []holdings.EquityHolding
}

type StockResult struct {
	Symbol          string                   `json:"symbol"`
	DisplayName     string                   `json:"displayName"`
	Code            string                   `json:"code,omitempty"`
	SharesToSell    float64                  `json:"sharesToSell"`
	OrderBookSource string                   `json:"orderBookSource"`
	ErrorMessage    string                   `json:"errorMessage,omitempty"`
	Liquidation     domain.LiquidationResult `json:"liquidation"`
	Spot            *domain.SpotQuote        `json:"spot,omitempty"`
	Impact          *domain.PriceImpact      `json:"impact,omitempty"`
}

type EquityReport struct {
	ID               string                   `json:"id"`
	GeneratedAt      time.Time                `json:"generatedAt"`
	Holdings         []holdings.EquityHolding `json:"holdings"`
	PerStock         []StockResult            `json:"perStock"`
	TotalRealizedUSD float64                  `json:"totalRealizedUsd"`
	Notes            []string                 `json:"notes"`
}

// Equities идёт по акциям строго последовательно с паузой Throttle между ними:
// у Alltick жёсткий лимит частоты. Ошибка по одной акции не прерывает цикл.
func (s *Service) Equities(ctx context.Context, req EquityRequest) (EquityReport, error) {
	hs := req.Holdings
	if hs == nil {
		hs = holdings.GatesHoldings()
	}
	if s.deps.EquityDepth == nil && s.deps.EquityFallback == nil {
		return EquityReport{}, errors.New("equity report: no depth sources configured")
	}
	rep := EquityReport{
		ID:          uuid.NewString(),
		GeneratedAt: s.now(),
		Holdings:    hs,
		PerStock:    make([]StockResult, 0, len(hs)),
		Notes:       []string{EquityNote},
	}

	synthetic := false
	for i, h := range hs {
		r := s.liquidateStock(ctx, h)
		if r.OrderBookSource == SourceYahooSynthetic {
			synthetic = true
		}
		if r.Liquidation.Exhausted {
			metrics.LiquidationExhaustedTotal.WithLabelValues("equities").Inc()
		}
		rep.PerStock = append(rep.PerStock, r)
		rep.TotalRealizedUSD += r.Liquidation.RealizedProceeds

		if i < len(hs)-1 {
			if err := s.sleep(ctx, s.opts.Throttle); err != nil {
				return rep, fmt.Errorf("equity report interrupted after %s: %w", h.Symbol, err)
			}
		}
	}
	if synthetic {
		rep.Notes = append(rep.Notes, syntheticNote)
	}
	s.log.Info().Str("id", rep.ID).Int("stocks", len(rep.PerStock)).
		Float64("total_usd", rep.TotalRealizedUSD).Msg("equity report ready")
	return rep, nil
}

func (s *Service) liquidateStock(ctx context.Context, h holdings.EquityHolding) StockResult {
	r := StockResult{Symbol: h.Symbol, DisplayName: h.DisplayName, SharesToSell: h.Shares}
	log := s.log.With().Str("symbol", h.Symbol).Logger()

	var depth domain.DepthSnapshot
	var fetchErr error
	haveBids := false
	if s.deps.EquityDepth != nil {
		var code string
		depth, code, fetchErr = s.fetchWithCandidates(ctx, h.Symbol)
		r.Code = code
		haveBids = fetchErr == nil
	}

	if haveBids {
		r.OrderBookSource = SourceAlltick
	} else {
		empty := errors.Is(fetchErr, domain.ErrEmptyBook)
		if fetchErr != nil {
			log.Warn().Err(fetchErr).Msg("equity depth unavailable")
		}
		if s.deps.EquityFallback != nil {
			fctx, cancel := context.WithTimeout(ctx, s.opts.EquityTimeout)
			fb, err := s.deps.EquityFallback.FetchDepth(fctx, h.Symbol)
			cancel()
			if err == nil && len(fb.Bids) > 0 {
				depth = fb
				r.OrderBookSource = SourceYahooSynthetic
				if fetchErr != nil {
					r.ErrorMessage = truncate(fetchErr.Error(), maxErrorLen)
				}
				haveBids = true
			} else if err != nil {
				log.Warn().Err(err).Msg("synthetic fallback failed")
				if fetchErr == nil {
					fetchErr = err
				}
			}
		}
		if !haveBids {
			r.Liquidation = orderbook.SimulateLiquidation(nil, h.Shares)
			switch {
			case empty:
				r.OrderBookSource = SourceAlltickEmpty
				r.ErrorMessage = "empty depth"
			default:
				r.OrderBookSource = SourceAlltickError
				if fetchErr != nil {
					r.ErrorMessage = truncate(fetchErr.Error(), maxErrorLen)
				}
			}
			return r
		}
	}

	r.Liquidation = orderbook.SimulateLiquidation(depth.Bids, h.Shares)
	if depth.Synthetic {
		r.Liquidation.SyntheticQuantity = r.Liquidation.SoldQuantity
	}

	if s.deps.EquitySpot != nil {
		sctx, cancel := context.WithTimeout(ctx, s.opts.SpotTimeout)
		q, err := s.deps.EquitySpot.FetchSpotPrice(sctx, h.Symbol)
		cancel()
		if err != nil {
			log.Debug().Err(err).Msg("equity spot unavailable")
		} else {
			r.Spot = &q
			imp := orderbook.ComputePriceImpact(q.Price, r.Liquidation.AverageRealizedPrice)
			r.Impact = &imp
		}
	}
	log.Debug().Str("source", r.OrderBookSource).Float64("proceeds", r.Liquidation.RealizedProceeds).Msg("stock liquidated")
	return r
}

// fetchWithCandidates перебирает коды площадки по порядку до первого ответа с бидами.
// Если хоть один код ответил пустым стаканом, итог: ErrEmptyBook, иначе последняя ошибка.
func (s *Service) fetchWithCandidates(ctx context.Context, symbol string) (domain.DepthSnapshot, string, error) {
	codes := []string{symbol}
	if s.deps.EquityCodes != nil {
		if c := s.deps.EquityCodes(symbol); len(c) > 0 {
			codes = c
		}
	}
	var lastErr error
	sawEmpty := false
	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return domain.DepthSnapshot{}, "", err
		}
		fctx, cancel := context.WithTimeout(ctx, s.opts.EquityTimeout)
		d, err := s.deps.EquityDepth.FetchDepth(fctx, code)
		cancel()
		switch {
		case err == nil && len(d.Bids) > 0:
			return d, code, nil
		case err == nil || errors.Is(err, domain.ErrEmptyBook):
			sawEmpty = true
		default:
			lastErr = err
		}
	}
	if sawEmpty {
		return domain.DepthSnapshot{}, "", &domain.FetchError{Source: s.deps.EquityDepth.Name(), Kind: domain.Schema, Err: domain.ErrEmptyBook}
	}
	if lastErr == nil {
		lastErr = domain.SchemaErr(s.deps.EquityDepth.Name(), "no code candidates for %s", symbol)
	}
	return domain.DepthSnapshot{}, "", lastErr
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
