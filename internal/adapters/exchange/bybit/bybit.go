// Package bybitadapter: стакан Bybit V5. Биды по убыванию, аски по возрастанию (гарантия площадки).
package bybitadapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"networth/internal/adapters/exchange/rest"
	"networth/internal/domain"
)

const Name = "bybit"

type Category string

const (
	Spot    Category = "spot"
	Linear  Category = "linear"
	Inverse Category = "inverse"
	Option  Category = "option"
)

// Максимальная глубина снимка по категории; пагинации дальше нет.
var maxByCategory = map[Category]int{
	Spot:    200,
	Linear:  500,
	Inverse: 500,
	Option:  25,
}

func toBybitSymbol(market string) string {
	m := strings.ToUpper(strings.TrimSpace(market))
	if strings.HasSuffix(m, "USDT") && len(m) > 4 {
		return m
	}
	return m + "USDT"
}

type Exchange struct {
	http     *rest.Client
	category Category
	limit    int
}

// New: пустая или неизвестная категория означает linear (самый глубокий снимок).
func New(opts rest.Options, category Category) *Exchange {
	depth, ok := maxByCategory[category]
	if !ok {
		category = Linear
		depth = maxByCategory[Linear]
	}
	return &Exchange{
		http:     rest.NewClient(Name, "https://api.bybit.com", opts),
		category: category,
		limit:    rest.ClampLimit(opts.DepthLimit, depth),
	}
}

func (b *Exchange) Name() string { return Name }

type bookPayload struct {
	A    [][]decimal.Decimal `json:"a"`
	B    [][]decimal.Decimal `json:"b"`
	Asks [][]decimal.Decimal `json:"asks"`
	Bids [][]decimal.Decimal `json:"bids"`
}

func (p bookPayload) sides() (bids, asks [][]decimal.Decimal) {
	bids, asks = p.B, p.A
	if bids == nil {
		bids = p.Bids
	}
	if asks == nil {
		asks = p.Asks
	}
	return bids, asks
}

// Книга бывает внутри result, а бывает на верхнем уровне.
type orderbookResp struct {
	RetCode int          `json:"retCode"`
	RetMsg  string       `json:"retMsg"`
	Result  *bookPayload `json:"result"`
	bookPayload
}

func (b *Exchange) FetchDepth(ctx context.Context, market string) (domain.DepthSnapshot, error) {
	path := fmt.Sprintf("/v5/market/orderbook?category=%s&symbol=%s&limit=%d", b.category, url.QueryEscape(toBybitSymbol(market)), b.limit)
	resp, err := rest.GetJSON[orderbookResp](ctx, b.http, path)
	if err != nil {
		return domain.DepthSnapshot{}, err
	}
	if resp.RetCode != 0 {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "api error retCode=%d: %s", resp.RetCode, resp.RetMsg)
	}
	payload := resp.bookPayload
	if resp.Result != nil {
		payload = *resp.Result
	}
	bids, asks := payload.sides()
	if bids == nil || asks == nil {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "malformed order book response")
	}
	return rest.Snapshot(Name, rest.Levels(bids), rest.Levels(asks))
}
