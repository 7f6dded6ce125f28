// Package upbitadapter: стакан Upbit (/v1/orderbook). Уровни приходят парами bid/ask в orderbook_units,
// от лучших к худшим. Для рынков KRW-* цены переводятся в USD по явному курсу, объёмы не меняются.
package upbitadapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"networth/internal/adapters/exchange/rest"
	"networth/internal/domain"
)

const Name = "upbit"

// Upbit: "KRW-BTC" (котируемая валюта впереди).
func toUpbitMarket(market string) string {
	m := strings.ToUpper(strings.TrimSpace(market))
	if strings.Contains(m, "-") {
		return m
	}
	return "KRW-" + m
}

type Exchange struct {
	http *rest.Client
	fx   domain.FXRate
}

// New: fx: сколько KRW за 1 USD. Без валидного курса KRW-рынки отдают ошибку схемы.
func New(opts rest.Options, fx domain.FXRate) *Exchange {
	return &Exchange{http: rest.NewClient(Name, "https://api.upbit.com", opts), fx: fx}
}

func (u *Exchange) Name() string { return Name }

type unit struct {
	AskPrice decimal.Decimal `json:"ask_price"`
	BidPrice decimal.Decimal `json:"bid_price"`
	AskSize  decimal.Decimal `json:"ask_size"`
	BidSize  decimal.Decimal `json:"bid_size"`
}

type orderbookResp []struct {
	Market         string `json:"market"`
	OrderbookUnits []unit `json:"orderbook_units"`
}

func (u *Exchange) FetchDepth(ctx context.Context, market string) (domain.DepthSnapshot, error) {
	m := toUpbitMarket(market)
	convert := strings.HasPrefix(m, "KRW-")
	if convert && !u.fx.Valid() {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "fx rate required for %s", m)
	}

	resp, err := rest.GetJSON[orderbookResp](ctx, u.http, fmt.Sprintf("/v1/orderbook?markets=%s", url.QueryEscape(m)))
	if err != nil {
		return domain.DepthSnapshot{}, err
	}
	if len(resp) == 0 || resp[0].OrderbookUnits == nil {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "malformed order book response")
	}

	rate := decimal.NewFromFloat(u.fx.QuotePerUSD)
	toUSD := func(p decimal.Decimal) float64 {
		if !convert {
			return p.InexactFloat64()
		}
		return p.Div(rate).InexactFloat64()
	}

	units := resp[0].OrderbookUnits
	bids := make([]domain.PriceLevel, 0, len(units))
	asks := make([]domain.PriceLevel, 0, len(units))
	for _, x := range units {
		bids = append(bids, domain.PriceLevel{Price: toUSD(x.BidPrice), Size: x.BidSize.InexactFloat64()})
		asks = append(asks, domain.PriceLevel{Price: toUSD(x.AskPrice), Size: x.AskSize.InexactFloat64()})
	}
	return rest.Snapshot(Name, domain.NormalizeLevels(bids), domain.NormalizeLevels(asks))
}
