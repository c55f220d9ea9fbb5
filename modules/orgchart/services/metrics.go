package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	orgchartBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgchart",
		Subsystem: "build",
		Name:      "total",
		Help:      "Total number of hierarchy builds broken down by result.",
	}, []string{"result"})

	orgchartBuildLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "orgchart",
		Subsystem: "build",
		Name:      "latency_seconds",
		Help:      "Time spent normalizing, linking and aggregating one snapshot.",
		Buckets: []float64{
			0.001, 0.002, 0.005,
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5,
		},
	})

	orgchartBuildNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "orgchart",
		Subsystem: "build",
		Name:      "nodes",
		Help:      "Number of nodes in the most recent build.",
	})

	orgchartDataAnomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgchart",
		Subsystem: "build",
		Name:      "anomalies_total",
		Help:      "Data-quality anomalies degraded during builds, by kind.",
	}, []string{"kind"})

	orgchartCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgchart",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Raw snapshot cache lookups broken down by hit/miss/error.",
	}, []string{"result"})
)

func recordBuild(ok bool, seconds float64, nodes int) {
	result := "ok"
	if !ok {
		result = "error"
	}
	orgchartBuilds.WithLabelValues(result).Inc()
	if ok {
		orgchartBuildLatency.Observe(seconds)
		orgchartBuildNodes.Set(float64(nodes))
	}
}

func recordAnomalies(kind string, n int) {
	if n <= 0 {
		return
	}
	orgchartDataAnomalies.WithLabelValues(kind).Add(float64(n))
}

func recordCacheRequest(result string) {
	orgchartCacheRequests.WithLabelValues(result).Inc()
}
