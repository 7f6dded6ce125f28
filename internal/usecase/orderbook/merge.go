package orderbook

import (
	"sort"

	"networth/internal/domain"
)

type mergedLevel struct {
	size      float64
	synthetic bool
}

// Merge суммирует объёмы на одинаковых ценах по всем площадкам.
// Биды по убыванию цены, аски по возрастанию. Книги обходятся в порядке имени источника,
// поэтому результат не зависит от порядка входа.
func Merge(books []domain.SourcedDepth, skipped []string) domain.AggregatedDepth {
	ordered := make([]domain.SourcedDepth, len(books))
	copy(ordered, books)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Source < ordered[j].Source })

	bids := map[float64]*mergedLevel{}
	asks := map[float64]*mergedLevel{}
	sources := make([]string, 0, len(ordered))
	for _, b := range ordered {
		sources = append(sources, b.Source)
		accumulate(bids, b.Depth.Bids, b.Depth.Synthetic)
		accumulate(asks, b.Depth.Asks, b.Depth.Synthetic)
	}

	out := domain.AggregatedDepth{
		Bids:           flatten(bids),
		Asks:           flatten(asks),
		Sources:        sources,
		SkippedSources: append([]string{}, skipped...),
	}
	sortBids(out.Bids)
	sortAsks(out.Asks)
	return out
}

func accumulate(dst map[float64]*mergedLevel, levels []domain.PriceLevel, bookSynthetic bool) {
	for _, l := range levels {
		m := dst[l.Price]
		if m == nil {
			m = &mergedLevel{}
			dst[l.Price] = m
		}
		m.size += l.Size
		m.synthetic = m.synthetic || l.Synthetic || bookSynthetic
	}
}

func flatten(m map[float64]*mergedLevel) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(m))
	for p, v := range m {
		out = append(out, domain.PriceLevel{Price: p, Size: v.size, Synthetic: v.synthetic})
	}
	return out
}

func sortBids(xs []domain.PriceLevel) {
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].Price > xs[j].Price })
}

func sortAsks(xs []domain.PriceLevel) {
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].Price < xs[j].Price })
}
