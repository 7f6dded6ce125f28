package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"networth/internal/domain"
	"networth/internal/shared/format"
	"networth/internal/usecase/report"
)

type CLIPresenter struct {
	out io.Writer
}

func NewCLIPresenter(out io.Writer) *CLIPresenter { return &CLIPresenter{out: out} }

func (c *CLIPresenter) printf(f string, args ...any) { fmt.Fprintf(c.out, f, args...) }

func (c *CLIPresenter) WriteJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *CLIPresenter) ShowBTCReport(r report.BTCReport) {
	h := r.Holdings
	c.printf("\n=== %s liquidation estimate ===\n", r.Coin)
	c.printf("Report:   %s  (%s)\n", r.ID, r.GeneratedAt.Format("15:04 02.01.2006 MST"))
	c.printf("Holdings: %s %s assumed (range %s - %s)\n",
		format.Grouped(h.AssumedBTC, 0), r.Coin, format.Grouped(h.LowerBTC, 0), format.Grouped(h.UpperBTC, 0))
	c.printf("Venues:   %s\n", strings.Join(r.Sources, ", "))
	for _, s := range r.SkippedSources {
		c.printf("  WARNING skipped %s\n", s)
	}

	if len(r.Augmentation) > 0 {
		c.printf("\nAugmentation (synthetic depth, reference shape):\n")
		for _, a := range r.Augmentation {
			if a.SyntheticLevelsAdded == 0 {
				continue
			}
			c.printf("  %-9s +%d synthetic levels, scale %.4f, min price %s -> %s\n",
				a.Source, a.SyntheticLevelsAdded, a.ScaleFactor, format.USD(a.OriginalMinPrice, 2), format.USD(a.NewMinPrice, 2))
		}
	}

	c.printf("\nAggregated depth: %d bid / %d ask levels, best bid %s, best ask %s, bid size %s %s\n",
		r.Depth.BidLevels, r.Depth.AskLevels, format.USD(r.Depth.BestBid, 2), format.USD(r.Depth.BestAsk, 2),
		format.Grouped(r.Depth.BidSize, 4), r.Coin)

	c.showLiquidation(r.Liquidation, r.Coin)

	if len(r.Liquidation.Breakdown) > 0 {
		c.printf("\nPer venue:\n")
		for _, b := range r.Liquidation.Breakdown {
			line := fmt.Sprintf("  %-9s sold %s %s for %s, avg %s",
				b.Source, format.Grouped(b.SoldQuantity, 4), r.Coin, format.USD(b.RealizedProceeds, 0), format.USD(b.AveragePrice, 2))
			if b.SyntheticQuantity > 0 {
				line += fmt.Sprintf(" (synthetic %s)", format.Grouped(b.SyntheticQuantity, 4))
			}
			c.printf("%s\n", line)
		}
	}

	if r.Spot != nil && r.Impact != nil {
		c.printf("\nSpot %s: %s\n", r.Spot.Market, format.USD(r.Spot.Price, 2))
		c.showImpact(*r.Impact)
	}
	c.showNotes(r.Notes)
}

func (c *CLIPresenter) showLiquidation(l domain.LiquidationResult, unit string) {
	c.printf("\nSold:     %s of %s %s\n", format.Grouped(l.SoldQuantity, 4), format.Grouped(l.TotalToSell, 4), unit)
	c.printf("Proceeds: %s, average price %s, %d levels\n",
		format.USD(l.RealizedProceeds, 0), format.USD(l.AverageRealizedPrice, 2), l.LevelsConsumed)
	if l.SyntheticQuantity > 0 {
		c.printf("Synthetic: %s %s filled against synthetic depth\n", format.Grouped(l.SyntheticQuantity, 4), unit)
	}
	if l.Exhausted {
		c.printf("WARNING depth exhausted: %s %s unsold\n", format.Grouped(l.UnsoldQuantity, 4), unit)
	}
}

func (c *CLIPresenter) showImpact(p domain.PriceImpact) {
	c.printf("Impact:   %s per unit below spot (%s discount)\n",
		format.USD(p.PriceDifference, 2), format.Percent(p.DiscountPercent, 2))
}

func (c *CLIPresenter) showNotes(notes []string) {
	if len(notes) == 0 {
		return
	}
	c.printf("\nNotes:\n")
	for _, n := range notes {
		c.printf("  - %s\n", n)
	}
}

func (c *CLIPresenter) ShowEquityReport(r report.EquityReport) {
	c.printf("\n=== Equity basket liquidation estimate ===\n")
	c.printf("Report: %s  (%s)\n\n", r.ID, r.GeneratedAt.Format("15:04 02.01.2006 MST"))
	c.printf("%-7s %-16s %16s %18s %12s %s\n", "Symbol", "Source", "Shares", "Proceeds", "Avg", "Status")
	for _, s := range r.PerStock {
		status := "ok"
		switch {
		case s.ErrorMessage != "" && s.OrderBookSource != report.SourceYahooSynthetic:
			status = s.ErrorMessage
		case s.Liquidation.Exhausted:
			status = "exhausted, unsold " + format.Grouped(s.Liquidation.UnsoldQuantity, 0)
		}
		if s.OrderBookSource == report.SourceYahooSynthetic {
			status = "synthetic; " + status
		}
		c.printf("%-7s %-16s %16s %18s %12s %s\n",
			s.Symbol, s.OrderBookSource, format.Grouped(s.SharesToSell, 0),
			format.USD(s.Liquidation.RealizedProceeds, 0), format.USD(s.Liquidation.AverageRealizedPrice, 2), status)
		if s.Impact != nil && s.Liquidation.SoldQuantity > 0 {
			c.printf("        spot %s, %s discount\n", format.USD(s.Impact.SpotPrice, 2), format.Percent(s.Impact.DiscountPercent, 2))
		}
	}
	c.printf("\nTotal realized: %s\n", format.USD(r.TotalRealizedUSD, 0))
	c.showNotes(r.Notes)
}
