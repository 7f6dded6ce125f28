// Package report собирает отчёты о ликвидации: BTC по нескольким площадкам и корзину акций.
package report

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"networth/internal/domain"
	"networth/internal/shared/retry"
)

// BookFetcher: параллельная выборка стаканов (exchangebooks.Repo).
type BookFetcher interface {
	Sources() []string
	FetchAll(ctx context.Context, market string) ([]domain.SourcedDepth, []domain.SkippedSource, error)
}

type Deps struct {
	Books BookFetcher
	// спот для BTC (Coinbase ticker); nil: без блока impact
	Spot domain.SpotSource
	// L2 акций (Alltick)
	EquityDepth domain.DepthSource
	// синтетический стакан из котировки (Yahoo); nil: без фоллбэка
	EquityFallback domain.DepthSource
	EquitySpot     domain.SpotSource
	// подбор кодов площадки по тикеру; nil: тикер как есть
	EquityCodes func(symbol string) []string
}

type Options struct {
	Reference string
	Augment   bool
	LowerBTC  float64
	UpperBTC  float64
	Assumed   float64
	// курс, если среди площадок есть KRW-рынок; попадает в отчёт
	FX domain.FXRate

	Throttle      time.Duration
	EquityTimeout time.Duration
	SpotTimeout   time.Duration
}

type Service struct {
	deps Deps
	opts Options
	log  zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewService(deps Deps, opts Options, logger zerolog.Logger) *Service {
	if opts.EquityTimeout <= 0 {
		opts.EquityTimeout = 8 * time.Second
	}
	if opts.SpotTimeout <= 0 {
		opts.SpotTimeout = 6 * time.Second
	}
	return &Service{
		deps:  deps,
		opts:  opts,
		log:   logger,
		now:   func() time.Time { return time.Now().UTC() },
		sleep: retry.Sleep,
	}
}
