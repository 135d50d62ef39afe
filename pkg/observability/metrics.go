package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClassificationMetrics records the outcome of every classified provider result
type ClassificationMetrics struct {
	classificationsTotal   *prometheus.CounterVec
	classificationDuration *prometheus.HistogramVec
	rulesLoaded            prometheus.Gauge
	ruleLoadFailures       *prometheus.CounterVec
}

// NewClassificationMetrics registers the classification collectors with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewClassificationMetrics(reg prometheus.Registerer) *ClassificationMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &ClassificationMetrics{
		classificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "error_mapping_classifications_total",
			Help: "Total number of classified provider results",
		}, []string{
			"outcome",      // mapped, undefined, unavailable, unexpected, invalid_input, error
			"failure_code", // top-level failure code for mapped results, empty otherwise
		}),

		classificationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "error_mapping_classification_duration_seconds",
			Help: "Time spent matching a provider result against the rule set",
			// Buckets: 10us to 10ms, a scan is in-memory
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"outcome"}),

		rulesLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "error_mapping_rules_loaded",
			Help: "Number of rules in the active rule set",
		}),

		ruleLoadFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "error_mapping_rule_load_failures_total",
			Help: "Total number of failed rule set loads",
		}, []string{"kind"}),
	}
}

// RecordClassification counts one classification and observes its duration
func (m *ClassificationMetrics) RecordClassification(outcome, failureCode string, duration time.Duration) {
	m.classificationsTotal.WithLabelValues(outcome, failureCode).Inc()
	m.classificationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// SetRulesLoaded records the size of the active rule set
func (m *ClassificationMetrics) SetRulesLoaded(n int) {
	m.rulesLoaded.Set(float64(n))
}

// RecordRuleLoadFailure counts a failed load by error kind
func (m *ClassificationMetrics) RecordRuleLoadFailure(kind string) {
	m.ruleLoadFailures.WithLabelValues(kind).Inc()
}
