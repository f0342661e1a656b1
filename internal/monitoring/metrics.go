package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pipeline metrics
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "journal_insights_stage_duration_seconds",
			Help:    "Duration of each analysis pipeline stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_insights_runs_total",
			Help: "Total number of analysis runs",
		},
		[]string{"status"},
	)

	tradesAnalyzed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "journal_insights_trades_analyzed",
			Help:    "Distribution of trade counts per analysis run",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_insights_errors_total",
			Help: "Total number of errors by category",
		},
		[]string{"category"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(stageDuration)
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(tradesAnalyzed)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ObserveStage records how long one pipeline stage took
func ObserveStage(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun records a completed analysis run
func RecordRun(status string, tradeCount int) {
	runsTotal.WithLabelValues(status).Inc()
	tradesAnalyzed.Observe(float64(tradeCount))
}

// RecordError records an error metric by category
func RecordError(category string) {
	errorsTotal.WithLabelValues(category).Inc()
}
