package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric label values.
const (
	OutcomeMatched  = "matched"
	OutcomeEmpty    = "empty"
	OutcomeCombined = "combined"

	TokenMatched = "matched"
	TokenDropped = "dropped"

	IdentifyHit   = "cache_hit"
	IdentifyCall  = "called"
	IdentifyError = "error"
)

// Metrics is the service's metric set.  A nil *Metrics is a valid no-op
// receiver so metrics stay optional in tests and the CLI.
type Metrics struct {
	matchRequests    *prometheus.CounterVec
	matchScore       prometheus.Histogram
	matchDuration    prometheus.Histogram
	parseTokens      *prometheus.CounterVec
	identifyRequests *prometheus.CounterVec
	snapshotFormulas prometheus.Gauge
}

// NewMetrics registers the application metric set on the collector.
func NewMetrics(c *Collector) *Metrics {
	return &Metrics{
		matchRequests: c.RegisterCounter("match_requests_total",
			"Match requests by outcome.", "outcome"),
		matchScore: c.RegisterHistogram("match_score",
			"Top-result score distribution.",
			[]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1}),
		matchDuration: c.RegisterHistogram("match_duration_seconds",
			"Wall time of one match request.",
			prometheus.DefBuckets),
		parseTokens: c.RegisterCounter("parse_tokens_total",
			"Parsed input tokens by result.", "result"),
		identifyRequests: c.RegisterCounter("identify_requests_total",
			"External identification lookups by outcome.", "outcome"),
		snapshotFormulas: c.RegisterGauge("snapshot_formulas",
			"Formulas in the published catalog snapshot."),
	}
}

// RecordMatch records one completed match request.
func (m *Metrics) RecordMatch(outcome string, topScore float64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.matchRequests.WithLabelValues(outcome).Inc()
	if outcome != OutcomeEmpty {
		m.matchScore.Observe(topScore)
	}
	m.matchDuration.Observe(elapsed.Seconds())
}

// RecordParse records how many tokens a parse call matched and dropped.
func (m *Metrics) RecordParse(matched, dropped int) {
	if m == nil {
		return
	}
	m.parseTokens.WithLabelValues(TokenMatched).Add(float64(matched))
	m.parseTokens.WithLabelValues(TokenDropped).Add(float64(dropped))
}

// RecordIdentify records one external identification lookup.
func (m *Metrics) RecordIdentify(outcome string) {
	if m == nil {
		return
	}
	m.identifyRequests.WithLabelValues(outcome).Inc()
}

// SetSnapshotSize publishes the current snapshot's formula count.
func (m *Metrics) SetSnapshotSize(n int) {
	if m == nil {
		return
	}
	m.snapshotFormulas.Set(float64(n))
}
