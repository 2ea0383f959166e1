package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	t.Parallel()

	c := NewCollector("fangmatch")
	m := NewMetrics(c)

	m.RecordMatch(OutcomeMatched, 0.92, 5*time.Millisecond)
	m.RecordMatch(OutcomeEmpty, 0, time.Millisecond)
	m.RecordParse(4, 1)
	m.RecordIdentify(IdentifyCall)
	m.SetSnapshotSize(8)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.matchRequests.WithLabelValues(OutcomeMatched)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.matchRequests.WithLabelValues(OutcomeEmpty)), 1e-9)
	assert.InDelta(t, 4.0, testutil.ToFloat64(m.parseTokens.WithLabelValues(TokenMatched)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.parseTokens.WithLabelValues(TokenDropped)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.identifyRequests.WithLabelValues(IdentifyCall)), 1e-9)
	assert.InDelta(t, 8.0, testutil.ToFloat64(m.snapshotFormulas), 1e-9)
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordMatch(OutcomeMatched, 1, time.Second)
		m.RecordParse(1, 0)
		m.RecordIdentify(IdentifyHit)
		m.SetSnapshotSize(3)
	})
}

func TestCollector_Handler(t *testing.T) {
	t.Parallel()

	c := NewCollector("fangmatch")
	m := NewMetrics(c)
	m.RecordMatch(OutcomeMatched, 0.8, time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "fangmatch_match_requests_total")
}
