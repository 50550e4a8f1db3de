package metrics

import "github.com/prometheus/client_golang/prometheus"

// EstimateMetrics exposes counters/histograms for the pricing and travel fee flows.
type EstimateMetrics struct {
	distanceLookups *prometheus.CounterVec
	lookupLatency   *prometheus.HistogramVec
	triggers        *prometheus.CounterVec
	feeEvaluations  *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	cacheResults    *prometheus.CounterVec
}

func NewEstimateMetrics(reg prometheus.Registerer) *EstimateMetrics {
	m := &EstimateMetrics{
		distanceLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cuddles",
			Subsystem: "travel",
			Name:      "distance_lookups_total",
			Help:      "Distance resolutions by method and outcome",
		}, []string{"method", "outcome"}),
		lookupLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cuddles",
			Subsystem: "travel",
			Name:      "distance_lookup_seconds",
			Help:      "Latency of distance resolution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cuddles",
			Subsystem: "lookup",
			Name:      "triggers_total",
			Help:      "Address lookup triggers by event and result",
		}, []string{"event", "result"}),
		feeEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cuddles",
			Subsystem: "travel",
			Name:      "fee_evaluations_total",
			Help:      "Travel fee evaluations by mode and status",
		}, []string{"mode", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cuddles",
			Subsystem: "booking",
			Name:      "step_transitions_total",
			Help:      "Wizard step transitions by source step and result",
		}, []string{"from", "result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cuddles",
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Outbound notifications by kind and status",
		}, []string{"kind", "status"}),
		cacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cuddles",
			Subsystem: "travel",
			Name:      "distance_cache_total",
			Help:      "Distance cache lookups by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.distanceLookups, m.lookupLatency, m.triggers, m.feeEvaluations,
		m.transitions, m.notifications, m.cacheResults)
	return m
}

func (m *EstimateMetrics) ObserveDistanceLookup(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.distanceLookups.WithLabelValues(method, outcome).Inc()
	m.lookupLatency.WithLabelValues(method).Observe(seconds)
}

// ObserveTrigger records a lookup trigger. result is issued, debounced, throttled or stale.
func (m *EstimateMetrics) ObserveTrigger(event, result string) {
	if m == nil {
		return
	}
	m.triggers.WithLabelValues(event, result).Inc()
}

func (m *EstimateMetrics) ObserveFeeEvaluation(mode, status string) {
	if m == nil {
		return
	}
	m.feeEvaluations.WithLabelValues(mode, status).Inc()
}

func (m *EstimateMetrics) ObserveTransition(from string, allowed bool) {
	if m == nil {
		return
	}
	result := "blocked"
	if allowed {
		result = "advanced"
	}
	m.transitions.WithLabelValues(from, result).Inc()
}

func (m *EstimateMetrics) ObserveNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, status).Inc()
}

func (m *EstimateMetrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheResults.WithLabelValues(result).Inc()
}
