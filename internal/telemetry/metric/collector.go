package metric

import "github.com/prometheus/client_golang/prometheus"

// StatsSource reports point-in-time session store statistics.
type StatsSource interface {
	Count() int
}

// storeCollector exposes registry statistics read at scrape time, so
// the gauge never drifts from the store's actual contents.
type storeCollector struct {
	src  StatsSource
	live *prometheus.Desc
}

func newStoreCollector(src StatsSource) *storeCollector {
	return &storeCollector{
		src: src,
		live: prometheus.NewDesc(
			namespace+"_sessions_live",
			"Number of sessions currently registered in the store.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.live
}

// Collect implements prometheus.Collector.
func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(c.src.Count()))
}
