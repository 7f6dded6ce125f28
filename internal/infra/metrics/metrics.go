package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// outcome: ok | transport | schema
	SourceFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "networth_source_fetch_total", Help: "Depth fetches by source and outcome"}, []string{"source", "outcome"})
	SourceFetchSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "networth_source_fetch_seconds", Help: "Depth fetch latency by source", Buckets: prometheus.ExponentialBuckets(0.05, 2, 8)}, []string{"source"})
	// flow: btc | equities
	LiquidationExhaustedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "networth_liquidation_exhausted_total", Help: "Liquidations that ran out of bid depth"}, []string{"flow"})
	SyntheticLevelsAdded = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "networth_synthetic_levels_added", Help: "Synthetic levels added by augmentation in the last report"}, []string{"source"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		SourceFetchTotal, SourceFetchSeconds, LiquidationExhaustedTotal, SyntheticLevelsAdded,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Info().Msg("Prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
