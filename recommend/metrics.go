package recommend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query modes used as metric labels.
const (
	ModeText    = "text"
	ModeProfile = "profile"
	ModeSimilar = "similar"
)

// Metrics instruments an Engine. A nil *Metrics records nothing.
type Metrics struct {
	queries *prometheus.CounterVec
	latency *prometheus.HistogramVec
	blocked *prometheus.CounterVec
	records prometheus.Gauge
}

// NewMetrics registers the engine metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cinematch_queries_total",
			Help: "Total recommendation queries by mode",
		}, []string{"mode"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cinematch_query_duration_seconds",
			Help:    "Duration of recommendation queries in seconds, including embedding",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"mode"}),
		blocked: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cinematch_guardrail_blocked_total",
			Help: "Candidates removed by guardrails, by category",
		}, []string{"category"}),
		records: f.NewGauge(prometheus.GaugeOpts{
			Name: "cinematch_catalog_records",
			Help: "Number of records in the serving catalog",
		}),
	}
}

func (m *Metrics) observeQuery(mode string, started time.Time) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(mode).Inc()
	m.latency.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}

func (m *Metrics) blockedCandidate(category string) {
	if m == nil {
		return
	}
	m.blocked.WithLabelValues(category).Inc()
}

func (m *Metrics) setRecords(n int) {
	if m == nil {
		return
	}
	m.records.Set(float64(n))
}
