// Package kucoinadapter: стакан KuCoin level2_100. Порядок уровней площадка гарантирует.
package kucoinadapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"networth/internal/adapters/exchange/rest"
	"networth/internal/domain"
)

const Name = "kucoin"

// KuCoin использует формат "BTC-USDT".
func toKuCoinSymbol(market string) string {
	m := strings.ToUpper(strings.TrimSpace(market))
	if strings.Contains(m, "-") {
		return m
	}
	return m + "-USDT"
}

type Exchange struct {
	http *rest.Client
}

func New(opts rest.Options) *Exchange {
	return &Exchange{http: rest.NewClient(Name, "https://api.kucoin.com", opts)}
}

func (k *Exchange) Name() string { return Name }

type orderbookResp struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Bids [][]decimal.Decimal `json:"bids"`
		Asks [][]decimal.Decimal `json:"asks"`
	} `json:"data"`
}

func (k *Exchange) FetchDepth(ctx context.Context, market string) (domain.DepthSnapshot, error) {
	path := fmt.Sprintf("/api/v1/market/orderbook/level2_100?symbol=%s", url.QueryEscape(toKuCoinSymbol(market)))
	resp, err := rest.GetJSON[orderbookResp](ctx, k.http, path)
	if err != nil {
		return domain.DepthSnapshot{}, err
	}
	if resp.Code != "200000" {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "api error code=%s: %s", resp.Code, resp.Msg)
	}
	if resp.Data == nil {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "missing data")
	}
	return rest.Snapshot(Name, rest.Levels(resp.Data.Bids), rest.Levels(resp.Data.Asks))
}
