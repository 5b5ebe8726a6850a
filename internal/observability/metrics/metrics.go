package metrics

import "github.com/prometheus/client_golang/prometheus"

// TriageMetrics exposes counters/histograms for the triage pipeline.
type TriageMetrics struct {
	requestsTotal   *prometheus.CounterVec
	categoriesTotal *prometheus.CounterVec
	fallbacksTotal  *prometheus.CounterVec
	pipelineLatency prometheus.Histogram
}

func NewTriageMetrics(reg prometheus.Registerer) *TriageMetrics {
	m := &TriageMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firstaid",
			Subsystem: "triage",
			Name:      "requests_total",
			Help:      "Pipeline invocations by terminal outcome",
		}, []string{"outcome"}),
		categoriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firstaid",
			Subsystem: "triage",
			Name:      "categories_total",
			Help:      "Triage results by category and severity",
		}, []string{"category", "severity"}),
		fallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firstaid",
			Subsystem: "triage",
			Name:      "collaborator_fallbacks_total",
			Help:      "External collaborator failures degraded to rule-based output",
		}, []string{"collaborator"}),
		pipelineLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "firstaid",
			Subsystem: "triage",
			Name:      "pipeline_latency_seconds",
			Help:      "End-to-end latency of one pipeline invocation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.categoriesTotal, m.fallbacksTotal, m.pipelineLatency)
	return m
}

// ObserveRequest records a terminal pipeline outcome: responded, rejected,
// out_of_scope, recovered, or error.
func (m *TriageMetrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
}

func (m *TriageMetrics) ObserveCategory(category, severity string) {
	if m == nil {
		return
	}
	m.categoriesTotal.WithLabelValues(category, severity).Inc()
}

// ObserveFallback records an external call that was replaced by its
// rule-based fallback.
func (m *TriageMetrics) ObserveFallback(collaborator string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(collaborator).Inc()
}

func (m *TriageMetrics) ObserveLatency(seconds float64) {
	if m == nil {
		return
	}
	m.pipelineLatency.Observe(seconds)
}
