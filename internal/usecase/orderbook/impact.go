package orderbook

import (
	"sort"

	"networth/internal/domain"
)

// ComputePriceImpact сравнивает среднюю цену продажи со спотом.
// spot <= 0 или не число: разница и дисконт нулевые.
func ComputePriceImpact(spot, average float64) domain.PriceImpact {
	out := domain.PriceImpact{SpotPrice: spot, AverageRealizedPrice: average}
	if !(spot > 0) || !domain.IsFinite(spot) {
		return out
	}
	out.PriceDifference = spot - average
	out.DiscountPercent = 1 - average/spot
	return out
}

// TopOfBookMid: середина между лучшим бидом и лучшим аском; если есть только одна сторона, берём её.
func TopOfBookMid(d domain.DepthSnapshot) (float64, bool) {
	bestBid := 0.0
	for _, l := range d.Bids {
		if l.Price > bestBid {
			bestBid = l.Price
		}
	}
	bestAsk := 0.0
	for _, l := range d.Asks {
		if bestAsk == 0 || l.Price < bestAsk {
			bestAsk = l.Price
		}
	}
	switch {
	case bestBid > 0 && bestAsk > 0:
		return (bestBid + bestAsk) / 2, true
	case bestAsk > 0:
		return bestAsk, true
	case bestBid > 0:
		return bestBid, true
	}
	return 0, false
}

// MedianMid: медиана mid-цен по площадкам. Возвращает также список площадок, давших цену.
func MedianMid(books []domain.SourcedDepth) (float64, []string) {
	var mids []float64
	var srcs []string
	for _, b := range books {
		if m, ok := TopOfBookMid(b.Depth); ok {
			mids = append(mids, m)
			srcs = append(srcs, b.Source)
		}
	}
	if len(mids) == 0 {
		return 0, nil
	}
	sort.Float64s(mids)
	n := len(mids)
	if n%2 == 1 {
		return mids[n/2], srcs
	}
	return (mids[n/2-1] + mids[n/2]) / 2, srcs
}
