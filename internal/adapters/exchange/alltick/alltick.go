// Package alltickadapter: L2-стакан акций Alltick (depth-tick). market: код Alltick вида "MSFT.US";
// подбор кода по тикеру делает CodeCandidates. Порядок уровней площадка не гарантирует, адаптер сортирует их сам.
package alltickadapter

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"networth/internal/adapters/exchange/rest"
	"networth/internal/domain"
)

const Name = "alltick"

// DefaultGears: ступени глубины; стакан обрезается по наибольшей.
var DefaultGears = []int{5, 10, 20, 50, 100, 200, 500, 1000, 2000}

type Exchange struct {
	http  *rest.Client
	token string
	gears []int
}

func New(opts rest.Options, token string, gears []int) *Exchange {
	if len(gears) == 0 {
		gears = DefaultGears
	}
	return &Exchange{
		http:  rest.NewClient(Name, "https://quote.alltick.io", opts),
		token: token,
		gears: gears,
	}
}

func (a *Exchange) Name() string { return Name }

type level struct {
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
}

type depthResp struct {
	Ret  int    `json:"ret"`
	Msg  string `json:"msg"`
	Data *struct {
		TickList []struct {
			Code string  `json:"code"`
			Bids []level `json:"bids"`
			Asks []level `json:"asks"`
		} `json:"tick_list"`
	} `json:"data"`
}

type depthQuery struct {
	Trace string `json:"trace"`
	Data  struct {
		SymbolList []struct {
			Code string `json:"code"`
		} `json:"symbol_list"`
	} `json:"data"`
}

func buildQuery(code string) string {
	var q depthQuery
	q.Trace = uuid.NewString()
	q.Data.SymbolList = append(q.Data.SymbolList, struct {
		Code string `json:"code"`
	}{Code: code})
	b, _ := json.Marshal(q)
	return string(b)
}

// FetchDepth: пустой список bids/asks площадки не ошибка: тогда вернётся ошибка схемы "empty book".
func (a *Exchange) FetchDepth(ctx context.Context, market string) (domain.DepthSnapshot, error) {
	v := url.Values{}
	if a.token != "" {
		v.Set("token", a.token)
	}
	v.Set("query", buildQuery(strings.TrimSpace(market)))

	resp, err := rest.GetJSON[depthResp](ctx, a.http, "/quote-stock-b-api/depth-tick?"+v.Encode())
	if err != nil {
		return domain.DepthSnapshot{}, err
	}
	if resp.Data == nil || len(resp.Data.TickList) == 0 {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "missing tick_list (ret=%d %s)", resp.Ret, resp.Msg)
	}
	tick := resp.Data.TickList[0]
	bids, asks := convert(tick.Bids), convert(tick.Asks)
	// сначала порядок, потом обрезка по ступени, иначе можно потерять лучшие уровни
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })
	limit := maxGear(a.gears)
	return rest.Snapshot(Name, rest.Limit(bids, limit), rest.Limit(asks, limit))
}

func convert(xs []level) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(xs))
	for _, l := range xs {
		out = append(out, domain.PriceLevel{Price: l.Price.InexactFloat64(), Size: l.Volume.InexactFloat64()})
	}
	return domain.NormalizeLevels(out)
}

func maxGear(gears []int) int {
	m := 0
	for _, g := range gears {
		if g > m {
			m = g
		}
	}
	return m
}

// CodeCandidates: варианты кода Alltick для тикера, в порядке перебора.
// Основной формат SYMBOL.US; для тикеров с '-' или '.' пробуем точку, дефис, подчёркивание и слитное написание.
func CodeCandidates(symbol string) []string {
	base := strings.ToUpper(strings.TrimSpace(symbol))
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	add(base + ".US")
	if strings.Contains(base, "-") {
		add(strings.ReplaceAll(base, "-", ".") + ".US")
		add(strings.ReplaceAll(base, "-", "") + ".US")
		add(strings.ReplaceAll(base, "-", "_") + ".US")
	}
	if strings.Contains(base, ".") {
		add(strings.ReplaceAll(base, ".", "-") + ".US")
		add(strings.ReplaceAll(base, ".", "") + ".US")
		add(strings.ReplaceAll(base, ".", "_") + ".US")
	}
	// встречавшиеся на практике варианты для Berkshire класса B
	if base == "BRK-B" {
		for _, s := range []string{"BRK.B.US", "BRK-B.US", "BRKB.US", "BRK.B", "BRKB"} {
			add(s)
		}
	}
	return out
}
