// Package coinbaseadapter: стакан Coinbase Exchange level=2 (агрегированные уровни) и тикер для спота.
// Coinbase отдаёт биды по убыванию, аски по возрастанию.
package coinbaseadapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"networth/internal/adapters/exchange/rest"
	"networth/internal/domain"
)

const Name = "coinbase"

// Coinbase: продукт "BTC-USD".
func toProduct(market string) string {
	m := strings.ToUpper(strings.TrimSpace(market))
	if strings.Contains(m, "-") {
		return m
	}
	return m + "-USD"
}

type Exchange struct {
	http *rest.Client
}

func New(opts rest.Options) *Exchange {
	return &Exchange{http: rest.NewClient(Name, "https://api.exchange.coinbase.com", opts)}
}

func (c *Exchange) Name() string { return Name }

type bookResp struct {
	Message string              `json:"message"`
	Bids    [][]decimal.Decimal `json:"bids"` // [[price, size, num_orders], ...]
	Asks    [][]decimal.Decimal `json:"asks"`
}

func (c *Exchange) FetchDepth(ctx context.Context, market string) (domain.DepthSnapshot, error) {
	path := fmt.Sprintf("/products/%s/book?level=2", url.PathEscape(toProduct(market)))
	resp, err := rest.GetJSON[bookResp](ctx, c.http, path)
	if err != nil {
		return domain.DepthSnapshot{}, err
	}
	if resp.Bids == nil || resp.Asks == nil {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "malformed order book response %s", resp.Message)
	}
	return rest.Snapshot(Name, rest.Levels(resp.Bids), rest.Levels(resp.Asks))
}

type tickerResp struct {
	Price  string `json:"price"`
	Bid    string `json:"bid"`
	Ask    string `json:"ask"`
	Volume string `json:"volume"`
}

// FetchSpotPrice: последняя сделка по продукту.
func (c *Exchange) FetchSpotPrice(ctx context.Context, market string) (domain.SpotQuote, error) {
	product := toProduct(market)
	resp, err := rest.GetJSON[tickerResp](ctx, c.http, fmt.Sprintf("/products/%s/ticker", url.PathEscape(product)))
	if err != nil {
		return domain.SpotQuote{}, err
	}
	price, ok := rest.ParseFloat(resp.Price)
	if !ok || !(price > 0) {
		return domain.SpotQuote{}, domain.SchemaErr(Name, "invalid price in ticker response: %q", resp.Price)
	}
	q := domain.SpotQuote{Market: product, Price: price}
	q.Bid, _ = rest.ParseFloat(resp.Bid)
	q.Ask, _ = rest.ParseFloat(resp.Ask)
	q.Volume24h, _ = rest.ParseFloat(resp.Volume)
	return q, nil
}
