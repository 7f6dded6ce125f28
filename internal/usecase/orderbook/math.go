package orderbook

import (
	"math"
	"sort"

	"networth/internal/domain"
)

type taggedLevel struct {
	source string
	domain.PriceLevel
}

type sourceAgg struct {
	sold, proceeds, synthetic float64
}

// SimulateLiquidation: продаём qty по бидам одной площадки, от лучшей цены вниз.
// qty <= 0 (или не число) даёт пустой результат с TotalToSell=0.
// SoldQuantity считается как TotalToSell - UnsoldQuantity; при полной продаже SoldQuantity == TotalToSell точно.
func SimulateLiquidation(bids []domain.PriceLevel, qty float64) domain.LiquidationResult {
	levels := make([]taggedLevel, 0, len(bids))
	for _, b := range bids {
		levels = append(levels, taggedLevel{PriceLevel: b})
	}
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].Price > levels[j].Price })
	res, _ := sweep(levels, qty)
	return res
}

// SimulateMultiSource: тот же проход по объединённым бидам всех площадок.
// При равной цене раньше исполняется источник с меньшим именем.
// Breakdown содержит все площадки и отсортирован по выручке, по убыванию.
func SimulateMultiSource(books []domain.SourcedDepth, qty float64) domain.LiquidationResult {
	var levels []taggedLevel
	for _, b := range books {
		for _, l := range b.Depth.Bids {
			if b.Depth.Synthetic {
				l.Synthetic = true
			}
			levels = append(levels, taggedLevel{source: b.Source, PriceLevel: l})
		}
	}
	sort.SliceStable(levels, func(i, j int) bool {
		if levels[i].Price != levels[j].Price {
			return levels[i].Price > levels[j].Price
		}
		return levels[i].source < levels[j].source
	})

	res, per := sweep(levels, qty)
	// площадки без исполнения тоже попадают в разбивку, с нулями
	for _, b := range books {
		if per[b.Source] == nil {
			per[b.Source] = &sourceAgg{}
		}
	}
	res.Breakdown = make([]domain.SourceBreakdown, 0, len(per))
	for src, a := range per {
		row := domain.SourceBreakdown{
			Source:            src,
			SoldQuantity:      a.sold,
			RealizedProceeds:  a.proceeds,
			SyntheticQuantity: a.synthetic,
		}
		if a.sold > 0 {
			row.AveragePrice = a.proceeds / a.sold
		}
		res.Breakdown = append(res.Breakdown, row)
	}
	sort.Slice(res.Breakdown, func(i, j int) bool {
		if res.Breakdown[i].RealizedProceeds != res.Breakdown[j].RealizedProceeds {
			return res.Breakdown[i].RealizedProceeds > res.Breakdown[j].RealizedProceeds
		}
		return res.Breakdown[i].Source < res.Breakdown[j].Source
	})
	return res
}

// sweep ожидает уже отсортированные уровни.
func sweep(levels []taggedLevel, qty float64) (domain.LiquidationResult, map[string]*sourceAgg) {
	per := map[string]*sourceAgg{}
	if !(qty > 0) || math.IsInf(qty, 1) {
		return domain.LiquidationResult{}, per
	}

	res := domain.LiquidationResult{TotalToSell: qty}
	remaining := qty
	for _, l := range levels {
		if remaining <= 0 {
			break
		}
		executed := math.Min(remaining, l.Size)
		if !(executed > 0) {
			continue
		}
		proceeds := executed * l.Price
		res.RealizedProceeds += proceeds
		remaining -= executed
		res.LevelsConsumed++

		a := per[l.source]
		if a == nil {
			a = &sourceAgg{}
			per[l.source] = a
		}
		a.sold += executed
		a.proceeds += proceeds
		if l.Synthetic {
			a.synthetic += executed
			res.SyntheticQuantity += executed
		}
	}
	if remaining < 0 {
		remaining = 0
	}
	res.UnsoldQuantity = remaining
	res.SoldQuantity = qty - remaining
	res.Exhausted = remaining > 0
	if res.SoldQuantity > 0 {
		res.AverageRealizedPrice = res.RealizedProceeds / res.SoldQuantity
	}
	return res, per
}
