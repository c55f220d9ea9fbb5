package controllers

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	orgchartAPIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgchart",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of org chart API requests broken down by endpoint and result.",
	}, []string{"endpoint", "result"})

	orgchartAPILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "orgchart",
		Subsystem: "api",
		Name:      "latency_seconds",
		Help:      "Latency distribution for org chart API requests.",
		Buckets: []float64{
			0.001, 0.002, 0.005,
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5, 10,
		},
	}, []string{"endpoint", "result"})
)

type statusRecordingResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecordingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecordingResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusRecordingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecordingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

func resultLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}

// instrumentAPI labels by a fixed endpoint name, never the raw path, so
// identities in URLs do not blow up metric cardinality.
func (c *OrgChartAPIController) instrumentAPI(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecordingResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		result := resultLabel(rec.status)
		orgchartAPIRequests.WithLabelValues(endpoint, result).Inc()
		orgchartAPILatency.WithLabelValues(endpoint, result).Observe(time.Since(start).Seconds())
	}
}
