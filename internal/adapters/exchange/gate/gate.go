// Package gateadapter: стакан Gate.io v4 spot. Биды по убыванию, аски по возрастанию.
package gateadapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"networth/internal/adapters/exchange/rest"
	"networth/internal/domain"
)

const (
	Name     = "gate"
	maxDepth = 1000
)

// Gate: "BTC_USDT".
func toGatePair(market string) string {
	m := strings.ToUpper(strings.TrimSpace(market))
	if strings.Contains(m, "_") {
		return m
	}
	return m + "_USDT"
}

type Exchange struct {
	http  *rest.Client
	limit int
}

func New(opts rest.Options) *Exchange {
	return &Exchange{
		http:  rest.NewClient(Name, "https://api.gateio.ws", opts),
		limit: rest.ClampLimit(opts.DepthLimit, maxDepth),
	}
}

func (g *Exchange) Name() string { return Name }

type orderbookResp struct {
	Label   string              `json:"label"`
	Message string              `json:"message"`
	Asks    [][]decimal.Decimal `json:"asks"`
	Bids    [][]decimal.Decimal `json:"bids"`
}

func (g *Exchange) FetchDepth(ctx context.Context, market string) (domain.DepthSnapshot, error) {
	path := fmt.Sprintf("/api/v4/spot/order_book?currency_pair=%s&limit=%d", url.QueryEscape(toGatePair(market)), g.limit)
	resp, err := rest.GetJSON[orderbookResp](ctx, g.http, path)
	if err != nil {
		return domain.DepthSnapshot{}, err
	}
	if resp.Label != "" {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "api error %s: %s", resp.Label, resp.Message)
	}
	return rest.Snapshot(Name, rest.Levels(resp.Bids), rest.Levels(resp.Asks))
}
