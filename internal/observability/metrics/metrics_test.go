package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTriageMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTriageMetrics(reg)

	m.ObserveRequest("responded")
	m.ObserveRequest("responded")
	m.ObserveRequest("rejected")
	m.ObserveCategory("bleeding", "medium")
	m.ObserveFallback("classifier")
	m.ObserveLatency(0.05)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("responded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.categoriesTotal.WithLabelValues("bleeding", "medium")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacksTotal.WithLabelValues("classifier")))
}

func TestTriageMetricsNilReceiverIsSafe(t *testing.T) {
	var m *TriageMetrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("responded")
		m.ObserveCategory("burn", "low")
		m.ObserveFallback("directory")
		m.ObserveLatency(0.01)
	})
}
