package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	energyPlanner = "energy_planner"

	lookupsTotal    = "lookups_total"
	tableCacheTotal = "table_cache_total"

	// Labels
	surfaceLabel = "surface"
	outcomeLabel = "outcome"
	resultLabel  = "result"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

/**
* Metrics definition
**/
var lookupsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: energyPlanner,
		Name:      lookupsTotal,
		Help:      "number of energy lookups partitioned by surface and outcome",
	},
	[]string{surfaceLabel, outcomeLabel},
)

var tableCacheTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: energyPlanner,
		Name:      tableCacheTotal,
		Help:      "number of reference table cache lookups partitioned by result",
	},
	[]string{resultLabel},
)

// IncreaseLookupsTotalMetric records the outcome of one lookup. outcome is "ok" or an error kind.
func IncreaseLookupsTotalMetric(surface, outcome string) {
	lookupsTotalMetric.With(prometheus.Labels{
		surfaceLabel: surface,
		outcomeLabel: outcome,
	}).Inc()
}

func IncreaseTableCacheMetric(result string) {
	tableCacheTotalMetric.With(prometheus.Labels{resultLabel: result}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(lookupsTotalMetric)
	prometheus.MustRegister(tableCacheTotalMetric)
}
