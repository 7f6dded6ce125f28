// Package htxadapter: стакан HTX (Huobi) /market/depth step0. Уровни приходят числами, не строками.
package htxadapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"networth/internal/adapters/exchange/rest"
	"networth/internal/domain"
)

const Name = "htx"

// HTX (Huobi) использует "btcusdt" (lowercase, без разделителей).
func toHTXSymbol(market string) string {
	m := strings.ToLower(strings.TrimSpace(market))
	if strings.HasSuffix(m, "usdt") && len(m) > 4 {
		return m
	}
	return m + "usdt"
}

type Exchange struct {
	http  *rest.Client
	limit int
}

func New(opts rest.Options) *Exchange {
	return &Exchange{
		http:  rest.NewClient(Name, "https://api.huobi.pro", opts),
		limit: opts.DepthLimit,
	}
}

func (h *Exchange) Name() string { return Name }

type depthResp struct {
	Status  string `json:"status"`
	ErrCode string `json:"err-code"`
	ErrMsg  string `json:"err-msg"`
	Tick    *struct {
		Bids [][]decimal.Decimal `json:"bids"` // [[price, amount], ...]
		Asks [][]decimal.Decimal `json:"asks"`
	} `json:"tick"`
}

func (h *Exchange) FetchDepth(ctx context.Context, market string) (domain.DepthSnapshot, error) {
	// type=step0: наименьшая агрегация. huobi не принимает limit: ограничим вручную.
	path := fmt.Sprintf("/market/depth?symbol=%s&type=step0", url.QueryEscape(toHTXSymbol(market)))
	resp, err := rest.GetJSON[depthResp](ctx, h.http, path)
	if err != nil {
		return domain.DepthSnapshot{}, err
	}
	if resp.Status != "ok" {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "api status=%s %s: %s", resp.Status, resp.ErrCode, resp.ErrMsg)
	}
	if resp.Tick == nil {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "missing tick")
	}
	return rest.Snapshot(Name,
		rest.Limit(rest.Levels(resp.Tick.Bids), h.limit),
		rest.Limit(rest.Levels(resp.Tick.Asks), h.limit))
}
