package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogStats is the read-only view of the method catalog exported as metrics.
type CatalogStats interface {
	// Datasets returns the dataset name of every catalog method, keyed by canonical label.
	Datasets() map[string]string
}

type catalogCollector struct {
	stats        CatalogStats
	totalMethods *prometheus.Desc
	methodInfo   *prometheus.Desc
}

func newCatalogCollector(stats CatalogStats) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_catalog_%s", energyPlanner, name)
	}

	return &catalogCollector{
		stats: stats,
		totalMethods: prometheus.NewDesc(
			fqName("methods_total"),
			"Total number of test methods known to the catalog.",
			nil, nil,
		),
		methodInfo: prometheus.NewDesc(
			fqName("method_info"),
			"Catalog method to dataset mapping.",
			[]string{"method", "dataset"}, nil,
		),
	}
}

func (c *catalogCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalMethods
	ch <- c.methodInfo
}

func (c *catalogCollector) Collect(ch chan<- prometheus.Metric) {
	datasets := c.stats.Datasets()
	ch <- prometheus.MustNewConstMetric(c.totalMethods, prometheus.GaugeValue, float64(len(datasets)))
	for method, dataset := range datasets {
		ch <- prometheus.MustNewConstMetric(c.methodInfo, prometheus.GaugeValue, 1, method, dataset)
	}
}

// RegisterCatalogCollector registers the catalog collector on the default registry.
func RegisterCatalogCollector(stats CatalogStats) error {
	return prometheus.Register(newCatalogCollector(stats))
}
