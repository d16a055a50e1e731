// Package metrics exposes the engine's prometheus/client_golang
// counters and histograms. These are purely observational: nothing in
// engine reads them back to make decisions.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	QuotesFetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arbexec",
		Name:      "quotes_fetched_total",
		Help:      "Quotes fetched from the aggregator, by leg.",
	}, []string{"leg"})

	QuoteLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "arbexec",
		Name:      "quote_latency_seconds",
		Help:      "Round-trip latency of a single quote request.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"leg"})

	OpportunitiesFound = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arbexec",
		Name:      "opportunities_found_total",
		Help:      "Round trips whose profit cleared the configured threshold.",
	})

	OpportunitiesSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arbexec",
		Name:      "opportunities_skipped_total",
		Help:      "Opportunities discarded before submission, by reason.",
	}, []string{"reason"})

	TransactionsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arbexec",
		Name:      "transactions_submitted_total",
		Help:      "Transactions submitted, by outcome and submission path.",
	}, []string{"path", "outcome"})

	SwapChannelDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "arbexec",
		Name:      "swap_channel_depth",
		Help:      "Pending items in the swap-data hand-off channel.",
	})
)

// Register adds every collector to reg, typically prometheus.DefaultRegisterer.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		QuotesFetched, QuoteLatency, OpportunitiesFound, OpportunitiesSkipped,
		TransactionsSubmitted, SwapChannelDepth,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
