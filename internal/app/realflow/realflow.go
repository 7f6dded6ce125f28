// Package realflow собирает живой контур: адаптеры площадок по конфигу, параллельную выборку
// и сервис отчётов.
package realflow

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	alltickadapter "networth/internal/adapters/exchange/alltick"
	binanceadapter "networth/internal/adapters/exchange/binance"
	bitgetadapter "networth/internal/adapters/exchange/bitget"
	bybitadapter "networth/internal/adapters/exchange/bybit"
	coinbaseadapter "networth/internal/adapters/exchange/coinbase"
	gateadapter "networth/internal/adapters/exchange/gate"
	htxadapter "networth/internal/adapters/exchange/htx"
	kucoinadapter "networth/internal/adapters/exchange/kucoin"
	okxadapter "networth/internal/adapters/exchange/okx"
	"networth/internal/adapters/exchange/rest"
	upbitadapter "networth/internal/adapters/exchange/upbit"
	yahooadapter "networth/internal/adapters/exchange/yahoo"
	"networth/internal/config"
	"networth/internal/domain"
	"networth/internal/infra/exchangebooks"
	"networth/internal/usecase/report"
)

type RealFlow struct {
	Service *report.Service
	Repo    *exchangebooks.Repo
}

func New(cfg config.Config, logger zerolog.Logger) (*RealFlow, error) {
	sources, err := DepthSources(cfg)
	if err != nil {
		return nil, err
	}
	repo := exchangebooks.NewRepo(sources, exchangebooks.Options{
		Timeout:    cfg.Fetch.Timeout,
		Attempts:   cfg.Fetch.Attempts,
		RetryDelay: cfg.Fetch.RetryDelay,
	}, logger.With().Str("component", "exchangebooks").Logger())

	deps := report.Deps{
		Books:       repo,
		Spot:        coinbaseadapter.New(adapterOpts(cfg, coinbaseadapter.Name)),
		EquityDepth: alltickadapter.New(adapterOpts(cfg, alltickadapter.Name), cfg.Equities.AlltickToken, cfg.Equities.Gears),
		EquityCodes: alltickadapter.CodeCandidates,
	}
	yahoo := yahooadapter.New(adapterOpts(cfg, yahooadapter.Name))
	deps.EquitySpot = yahoo
	if cfg.Equities.YahooFallback {
		deps.EquityFallback = yahoo
	}

	svc := report.NewService(deps, report.Options{
		Reference:     cfg.BTC.Reference,
		Augment:       cfg.BTC.Augment,
		LowerBTC:      cfg.BTC.Lower,
		UpperBTC:      cfg.BTC.Upper,
		Assumed:       cfg.BTC.Assumed,
		FX:            fxRate(cfg),
		Throttle:      cfg.Equities.Throttle,
		EquityTimeout: cfg.Equities.Timeout,
		SpotTimeout:   cfg.Fetch.Timeout,
	}, logger.With().Str("component", "report").Logger())

	if cfg.Equities.AlltickToken == "" {
		logger.Warn().Msg("ALLTICK_TOKEN is not set, equity depth requests will likely be rejected")
	}
	return &RealFlow{Service: svc, Repo: repo}, nil
}

// DepthSources: адаптеры BTC-площадок в порядке из конфига.
func DepthSources(cfg config.Config) ([]domain.DepthSource, error) {
	out := make([]domain.DepthSource, 0, len(cfg.BTC.Venues))
	for _, v := range cfg.BTC.Venues {
		opts := adapterOpts(cfg, v)
		switch strings.ToLower(v) {
		case coinbaseadapter.Name:
			out = append(out, coinbaseadapter.New(opts))
		case binanceadapter.Name:
			out = append(out, binanceadapter.New(opts))
		case okxadapter.Name:
			out = append(out, okxadapter.New(opts))
		case bybitadapter.Name:
			out = append(out, bybitadapter.New(opts, bybitadapter.Category(cfg.BTC.BybitCategory)))
		case upbitadapter.Name:
			out = append(out, upbitadapter.New(opts, fxRate(cfg)))
		case kucoinadapter.Name:
			out = append(out, kucoinadapter.New(opts))
		case gateadapter.Name:
			out = append(out, gateadapter.New(opts))
		case htxadapter.Name:
			out = append(out, htxadapter.New(opts))
		case bitgetadapter.Name:
			out = append(out, bitgetadapter.New(opts))
		default:
			return nil, fmt.Errorf("unknown venue %q", v)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no venues configured")
	}
	return out, nil
}

func adapterOpts(cfg config.Config, venue string) rest.Options {
	return rest.Options{
		BaseURL:    cfg.Fetch.BaseURLs[venue],
		UserAgent:  cfg.Fetch.UserAgent,
		DepthLimit: cfg.Fetch.DepthLimit,
	}
}

func fxRate(cfg config.Config) domain.FXRate {
	return domain.FXRate{Pair: "USD/KRW", QuotePerUSD: cfg.FX.KRWPerUSD, AsOf: cfg.FX.AsOf}
}
