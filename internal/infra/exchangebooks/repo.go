package exchangebooks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"networth/internal/domain"
	"networth/internal/infra/metrics"
	"networth/internal/shared/retry"
)

type Options struct {
	// таймаут одной попытки
	Timeout    time.Duration
	Attempts   int
	RetryDelay time.Duration
}

// Repo тянет стаканы со всех площадок параллельно.
// Адаптеры делают ровно один запрос; повторы и таймауты живут здесь.
type Repo struct {
	sources []domain.DepthSource
	opts    Options
	log     zerolog.Logger
}

func NewRepo(sources []domain.DepthSource, opts Options, logger zerolog.Logger) *Repo {
	if opts.Timeout <= 0 {
		opts.Timeout = 6 * time.Second
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	return &Repo{sources: sources, opts: opts, log: logger}
}

func (r *Repo) Sources() []string {
	out := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s.Name())
	}
	return out
}

// FetchAll возвращает стаканы в порядке регистрации площадок.
// Отказ одной площадки не валит остальные; ErrAllSourcesFailed: только если не ответил никто.
func (r *Repo) FetchAll(ctx context.Context, market string) ([]domain.SourcedDepth, []domain.SkippedSource, error) {
	type slot struct {
		depth domain.DepthSnapshot
		err   error
	}
	slots := make([]slot, len(r.sources))

	var g errgroup.Group
	for i, src := range r.sources {
		i, src := i, src
		g.Go(func() error {
			d, err := r.fetchOne(ctx, src, market)
			slots[i] = slot{depth: d, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var books []domain.SourcedDepth
	var skipped []domain.SkippedSource
	for i, s := range slots {
		name := r.sources[i].Name()
		if s.err != nil {
			skipped = append(skipped, domain.SkippedSource{Source: name, Kind: domain.KindOf(s.err), Reason: reason(s.err)})
			continue
		}
		books = append(books, domain.SourcedDepth{Source: name, Depth: s.depth})
	}

	if len(books) == 0 {
		parts := make([]string, 0, len(skipped))
		for _, s := range skipped {
			parts = append(parts, s.String())
		}
		return nil, skipped, fmt.Errorf("%w (%s)", domain.ErrAllSourcesFailed, strings.Join(parts, "; "))
	}
	return books, skipped, nil
}

func (r *Repo) fetchOne(ctx context.Context, src domain.DepthSource, market string) (domain.DepthSnapshot, error) {
	name := src.Name()
	start := time.Now()
	var out domain.DepthSnapshot
	err := retry.WithRetry(ctx, r.opts.Attempts, r.opts.RetryDelay, func(ctx context.Context) error {
		tctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
		d, err := src.FetchDepth(tctx, market)
		if err != nil {
			// битый ответ повторять бессмысленно
			if domain.KindOf(err) == domain.Schema {
				return retry.Permanent(err)
			}
			r.log.Debug().Str("source", name).Err(err).Msg("depth fetch attempt failed")
			return err
		}
		out = d
		return nil
	})
	metrics.SourceFetchSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		if domain.KindOf(err) == 0 {
			err = domain.TransportErr(name, err)
		}
		metrics.SourceFetchTotal.WithLabelValues(name, domain.KindOf(err).String()).Inc()
		r.log.Warn().Str("source", name).Str("market", market).Err(err).Msg("depth source skipped")
		return domain.DepthSnapshot{}, err
	}
	metrics.SourceFetchTotal.WithLabelValues(name, "ok").Inc()
	r.log.Debug().Str("source", name).Int("bids", len(out.Bids)).Int("asks", len(out.Asks)).
		Dur("took", time.Since(start)).Msg("depth fetched")
	return out, nil
}

// reason: текст ошибки без префикса площадки, он уже есть в SkippedSource.Source.
func reason(err error) string {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return fe.Kind.String() + ": " + fe.Err.Error()
	}
	return err.Error()
}
