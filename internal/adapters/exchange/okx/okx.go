// Package okxadapter: стакан OKX (/api/v5/market/books). OKX отдаёт биды по убыванию, аски по возрастанию.
package okxadapter

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
	Name     = "okx"
	maxDepth = 400
)

// У OKX формат "BTC-USDT". На вход приходит базовый тикер ("BTC") или уже готовый instId.
func toOKXSymbol(market string) string {
	m := strings.ToUpper(strings.TrimSpace(market))
	if strings.Contains(m, "-") {
		return m
	}
	return m + "-USDT"
}

type Exchange struct {
	http  *rest.Client
	limit int
}

func New(opts rest.Options) *Exchange {
	return &Exchange{
		http:  rest.NewClient(Name, "https://www.okx.com", opts),
		limit: rest.ClampLimit(opts.DepthLimit, maxDepth),
	}
}

func (o *Exchange) Name() string { return Name }

type orderbookResp struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Asks [][]decimal.Decimal `json:"asks"` // [[price, size, "0", orders], ...]
		Bids [][]decimal.Decimal `json:"bids"`
	} `json:"data"`
}

func (o *Exchange) FetchDepth(ctx context.Context, market string) (domain.DepthSnapshot, error) {
	path := fmt.Sprintf("/api/v5/market/books?instId=%s&sz=%d", url.QueryEscape(toOKXSymbol(market)), o.limit)
	resp, err := rest.GetJSON[orderbookResp](ctx, o.http, path)
	if err != nil {
		return domain.DepthSnapshot{}, err
	}
	if resp.Code != "0" {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "api error code=%s: %s", resp.Code, resp.Msg)
	}
	if len(resp.Data) == 0 {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "missing data")
	}
	d := resp.Data[0]
	return rest.Snapshot(Name, rest.Levels(d.Bids), rest.Levels(d.Asks))
}
