// Package yahooadapter: котировка Yahoo Finance без ключа. Глубины Yahoo не отдаёт, поэтому
// FetchDepth строит эвристический стакан из лучшего бида и дневного объёма. Это не настоящий L2:
// снимок и все уровни помечены Synthetic.
package yahooadapter

import (
	"context"
	"math"
	"net/url"
	"strings"

	"networth/internal/adapters/exchange/rest"
	"networth/internal/domain"
)

const (
	Name = "yahoo-synthetic"

	SyntheticLevels = 16
	// объём, если Yahoo его не отдал
	FallbackVolume = 5_000_000
	// доля дневного объёма, раскладываемая по уровням
	volumeShare = 0.35
	priceStep   = 0.0015
	sizeDecay   = 0.07
	minSizeFrac = 0.1
	firstBoost  = 1.4
)

type Quote struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketVol   float64 `json:"regularMarketVolume"`
	Bid                float64 `json:"bid"`
	Ask                float64 `json:"ask"`
	BidSize            float64 `json:"bidSize"`
	AskSize            float64 `json:"askSize"`
}

type Exchange struct {
	http *rest.Client
}

func New(opts rest.Options) *Exchange {
	return &Exchange{http: rest.NewClient(Name, "https://query1.finance.yahoo.com", opts)}
}

func (y *Exchange) Name() string { return Name }

type quoteResp struct {
	QuoteResponse struct {
		Result []Quote `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

func (y *Exchange) FetchQuote(ctx context.Context, symbol string) (Quote, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	resp, err := rest.GetJSON[quoteResp](ctx, y.http, "/v7/finance/quote?symbols="+url.QueryEscape(s))
	if err != nil {
		return Quote{}, err
	}
	if e := resp.QuoteResponse.Error; e != nil {
		return Quote{}, domain.SchemaErr(Name, "api error %s: %s", e.Code, e.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return Quote{}, domain.SchemaErr(Name, "missing quote data for %s", s)
	}
	return resp.QuoteResponse.Result[0], nil
}

func (y *Exchange) FetchDepth(ctx context.Context, market string) (domain.DepthSnapshot, error) {
	q, err := y.FetchQuote(ctx, market)
	if err != nil {
		return domain.DepthSnapshot{}, err
	}
	bids := SynthesizeBids(q, SyntheticLevels)
	if len(bids) == 0 {
		return domain.DepthSnapshot{}, domain.SchemaErr(Name, "no usable bid or price for %s", q.Symbol)
	}
	// аски для продажи не нужны
	return domain.DepthSnapshot{Bids: bids, Synthetic: true}, nil
}

func (y *Exchange) FetchSpotPrice(ctx context.Context, market string) (domain.SpotQuote, error) {
	q, err := y.FetchQuote(ctx, market)
	if err != nil {
		return domain.SpotQuote{}, err
	}
	if !(q.RegularMarketPrice > 0) {
		return domain.SpotQuote{}, domain.SchemaErr(Name, "invalid price for %s", q.Symbol)
	}
	return domain.SpotQuote{
		Market:    q.Symbol,
		Price:     q.RegularMarketPrice,
		Bid:       q.Bid,
		Ask:       q.Ask,
		Volume24h: q.RegularMarketVol,
	}, nil
}

// SynthesizeBids раскладывает 35% дневного объёма по levels уровням:
// цена i-го = bid*(1-0.0015*i), объём = min(остаток, first*max(0.1, 1-0.07*i)), first = target/levels*1.4.
// Заканчивает раньше, если цель исчерпана. Бид берётся из котировки, иначе последняя цена.
func SynthesizeBids(q Quote, levels int) []domain.PriceLevel {
	bid := q.Bid
	if !(bid > 0) {
		bid = q.RegularMarketPrice
	}
	if !(bid > 0) || !domain.IsFinite(bid) || levels <= 0 {
		return nil
	}
	volume := q.RegularMarketVol
	if !(volume > 0) || !domain.IsFinite(volume) {
		volume = FallbackVolume
	}
	target := math.Min(volume*volumeShare, volume)
	first := target / float64(levels) * firstBoost

	out := make([]domain.PriceLevel, 0, levels)
	remaining := target
	for i := 0; i < levels && remaining > 0; i++ {
		price := bid * (1 - priceStep*float64(i))
		size := math.Min(remaining, first*math.Max(minSizeFrac, 1-sizeDecay*float64(i)))
		out = append(out, domain.PriceLevel{Price: price, Size: size, Synthetic: true})
		remaining -= size
	}
	return domain.NormalizeLevels(out)
}
