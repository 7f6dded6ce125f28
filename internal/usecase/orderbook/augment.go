package orderbook

import (
	"networth/internal/domain"
)

// Augment достраивает глубину бидов у площадок с мелким стаканом по форме стакана reference.
//
// Для каждой площадки кроме reference:
//   - масштаб = объём площадки / объём reference на ценах >= минимальной цены площадки
//     (1, если у reference там ничего нет);
//   - уровни reference строго ниже минимальной цены площадки копируются с объёмом * масштаб
//     и помечаются Synthetic;
//   - аски не меняются.
//
// Если reference нет среди книг, книги возвращаются как есть и без сводок. Вход не мутируется.
func Augment(books []domain.SourcedDepth, reference string) ([]domain.SourcedDepth, []domain.AugmentationSummary) {
	ref, ok := findSource(books, reference)
	if !ok {
		return books, nil
	}
	refBids := make([]domain.PriceLevel, len(ref.Depth.Bids))
	copy(refBids, ref.Depth.Bids)
	sortBids(refBids)

	out := make([]domain.SourcedDepth, 0, len(books))
	var summaries []domain.AugmentationSummary
	for _, b := range books {
		if b.Source == reference {
			out = append(out, b)
			continue
		}
		aug, sum := augmentOne(b, refBids)
		out = append(out, aug)
		summaries = append(summaries, sum)
	}
	return out, summaries
}

func augmentOne(b domain.SourcedDepth, refBids []domain.PriceLevel) (domain.SourcedDepth, domain.AugmentationSummary) {
	bids := b.Depth.Bids
	sum := domain.AugmentationSummary{
		Source:            b.Source,
		OriginalBidCount:  len(bids),
		AugmentedBidCount: len(bids),
		ScaleFactor:       1,
	}
	if len(bids) == 0 || len(refBids) == 0 {
		sum.OriginalMinPrice = minPrice(bids)
		sum.NewMinPrice = sum.OriginalMinPrice
		return b, sum
	}

	otherMin := minPrice(bids)
	refMin := minPrice(refBids)
	sum.OriginalMinPrice = otherMin
	sum.NewMinPrice = otherMin
	if refMin >= otherMin {
		return b, sum
	}

	var refOverlap, otherOverlap float64
	for _, l := range refBids {
		if l.Price >= otherMin {
			refOverlap += l.Size
		}
	}
	for _, l := range bids {
		if l.Price >= otherMin {
			otherOverlap += l.Size
		}
	}
	scale := 1.0
	if refOverlap > 0 {
		scale = otherOverlap / refOverlap
	}

	newBids := make([]domain.PriceLevel, 0, len(bids)+len(refBids))
	newBids = append(newBids, bids...)
	added := 0
	for _, l := range refBids {
		if l.Price < otherMin {
			newBids = append(newBids, domain.PriceLevel{Price: l.Price, Size: l.Size * scale, Synthetic: true})
			added++
		}
	}
	sortBids(newBids)

	sum.ScaleFactor = scale
	sum.SyntheticLevelsAdded = added
	sum.AugmentedBidCount = len(newBids)
	sum.NewMinPrice = minPrice(newBids)

	depth := b.Depth
	depth.Bids = newBids
	return domain.SourcedDepth{Source: b.Source, Depth: depth}, sum
}

func findSource(books []domain.SourcedDepth, name string) (domain.SourcedDepth, bool) {
	for _, b := range books {
		if b.Source == name {
			return b, true
		}
	}
	return domain.SourcedDepth{}, false
}

// minPrice возвращает 0 для пустого среза.
func minPrice(xs []domain.PriceLevel) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0].Price
	for _, l := range xs[1:] {
		if l.Price < m {
			m = l.Price
		}
	}
	return m
}
