// Package bitgetadapter: стакан Bitget v2 spot. Биды по убыванию, аски по возрастанию.
package bitgetadapter

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
	Name     = "bitget"
	maxDepth = 150
)

func toBitgetSymbol(market string) string {
	m := strings.ToUpper(strings.TrimSpace(market))
	if strings.HasSuffix(m, "USDT") && len(m) > 4 {
		return m
	}
	return m + "USDT"
}

type Exchange struct {
	http  *rest.Client
	limit int
}

func New(opts rest.Options) *Exchange {
	return &Exchange{
		http:  rest.NewClient(Name, "https://api.bitget.com", opts),
		limit: rest.ClampLimit(opts.DepthLimit, maxDepth),
	}
}

func (b *Exchange) Name() string { return Name }

type depthResp struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Asks [][]decimal.Decimal `json:"asks"`
		Bids [][]decimal.Decimal `json:"bids"`
	} `json:"data"`
}

func (b *Exchange) FetchDepth(ctx context.Context, market string) (domain.DepthSnapshot, error) {
	path := fmt.Sprintf("/api/v2/spot/market/orderbook?symbol=%s&type=step0&limit=%d", url.QueryEscape(toBitgetSymbol(market)), b.limit)
	resp, err := rest.GetJSON[depthResp](ctx, b.http, path)
	if err != nil {
		return domain.DepthSnapshot{}, err
	}
	if resp.Code != "00000" {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "api error code=%s: %s", resp.Code, resp.Msg)
	}
	if resp.Data == nil {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "missing data")
	}
	return rest.Snapshot(Name, rest.Levels(resp.Data.Bids), rest.Levels(resp.Data.Asks))
}
