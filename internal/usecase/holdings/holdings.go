// Package holdings: статические оценки позиций, которые ликвидируем.
package holdings

const (
	SatoshiLower   = 600_000
	SatoshiUpper   = 1_100_000
	SatoshiAssumed = 1_000_000

	SatoshiNote = "Estimates sourced from widely cited community / analytic firm heuristics; not exact."
	GatesNote   = "Static snapshot of reported holdings; not dynamically refreshed."
)

type SatoshiEstimate struct {
	AssumedBTC float64 `json:"assumedBtc"`
	LowerBTC   float64 `json:"lowerBtc"`
	UpperBTC   float64 `json:"upperBtc"`
	Note       string  `json:"note"`
}

// EstimateSatoshi: консенсусная оценка; override заменяет только assumed, диапазон остаётся.
func EstimateSatoshi(override *float64) SatoshiEstimate {
	e := SatoshiEstimate{
		AssumedBTC: SatoshiAssumed,
		LowerBTC:   SatoshiLower,
		UpperBTC:   SatoshiUpper,
		Note:       SatoshiNote,
	}
	if override != nil {
		e.AssumedBTC = *override
	}
	return e
}

type EquityHolding struct {
	// тикер в нотации Yahoo (BRK-B, не BRK.B)
	Symbol      string  `json:"symbol"`
	DisplayName string  `json:"displayName"`
	Shares      float64 `json:"shares"`
}

var gates = []EquityHolding{
	{Symbol: "MSFT", DisplayName: "Microsoft", Shares: 28_457_247},
	{Symbol: "BRK-B", DisplayName: "Berkshire Hathaway (Class B)", Shares: 17_172_435},
	{Symbol: "WM", DisplayName: "Waste Management", Shares: 32_234_344},
	{Symbol: "CNI", DisplayName: "Canadian National Railway", Shares: 54_826_786},
	{Symbol: "CAT", DisplayName: "Caterpillar", Shares: 7_353_614},
	{Symbol: "DE", DisplayName: "John Deere", Shares: 3_557_378},
	{Symbol: "ECL", DisplayName: "Ecolab", Shares: 5_218_044},
}

// GatesHoldings возвращает копию: вызывающий может её менять.
func GatesHoldings() []EquityHolding {
	out := make([]EquityHolding, len(gates))
	copy(out, gates)
	return out
}
