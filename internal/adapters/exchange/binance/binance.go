// Package binanceadapter: стакан Binance spot через go-binance SDK.
// Биды по убыванию, аски по возрастанию.
package binanceadapter

import (
	"context"
	"strings"

	gbinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"networth/internal/adapters/exchange/rest"
	"networth/internal/domain"
)

const (
	Name     = "binance"
	maxDepth = 5000
)

func toBinanceSymbol(market string) string {
	m := strings.ToUpper(strings.TrimSpace(market))
	if strings.HasSuffix(m, "USDT") && len(m) > 4 {
		return m
	}
	return m + "USDT"
}

type Exchange struct {
	client *gbinance.Client
	limit  int
}

func New(opts rest.Options) *Exchange {
	client := gbinance.NewClient("", "")
	if opts.BaseURL != "" {
		client.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		client.HTTPClient = opts.HTTPClient
	}
	if opts.UserAgent != "" {
		client.UserAgent = opts.UserAgent
	} else {
		client.UserAgent = rest.DefaultUserAgent
	}
	return &Exchange{client: client, limit: rest.ClampLimit(opts.DepthLimit, maxDepth)}
}

func (b *Exchange) Name() string { return Name }

func (b *Exchange) FetchDepth(ctx context.Context, market string) (domain.DepthSnapshot, error) {
	depth, err := b.client.NewDepthService().Symbol(toBinanceSymbol(market)).Limit(b.limit).Do(ctx)
	if err != nil {
		if common.IsAPIError(err) {
			return domain.DepthSnapshot{}, domain.SchemaErr(Name, "api error: %v", err)
		}
		return domain.DepthSnapshot{}, domain.TransportErr(Name, err)
	}

	bids := make([]domain.PriceLevel, 0, len(depth.Bids))
	for _, l := range depth.Bids {
		bids = append(bids, level(l.Price, l.Quantity))
	}
	asks := make([]domain.PriceLevel, 0, len(depth.Asks))
	for _, l := range depth.Asks {
		asks = append(asks, level(l.Price, l.Quantity))
	}
	return rest.Snapshot(Name, domain.NormalizeLevels(bids), domain.NormalizeLevels(asks))
}

// Битая строка превращается в 0 и отсеивается NormalizeLevels.
func level(price, qty string) domain.PriceLevel {
	p, _ := rest.ParseFloat(price)
	q, _ := rest.ParseFloat(qty)
	return domain.PriceLevel{Price: p, Size: q}
}
