package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "procuremart"

// Procurement records order lifecycle and credit events.
type Procurement struct {
	transitions  *prometheus.CounterVec
	conflicts    *prometheus.CounterVec
	retries      *prometheus.CounterVec
	rejections   prometheus.Counter
	compensation *prometheus.CounterVec
	payments     *prometheus.CounterVec
	anomalies    *prometheus.CounterVec
	verifyRuns   *prometheus.HistogramVec
}

// NewProcurement registers procurement metrics on reg. A nil registerer
// yields a recorder whose methods are no-ops.
func NewProcurement(reg prometheus.Registerer) *Procurement {
	if reg == nil {
		return &Procurement{}
	}
	m := &Procurement{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Applied order status transitions.",
		}, []string{"from", "to"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concurrent_update_conflicts_total",
			Help:      "Conditional writes that lost a race.",
		}, []string{"operation"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concurrency_retries_total",
			Help:      "Re-validated attempts after a lost conditional write.",
		}, []string{"operation"}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credit_limit_rejections_total",
			Help:      "Quote acceptances refused for exceeding the client credit limit.",
		}),
		compensation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compensations_total",
			Help:      "Undo steps executed after a failed multi-step operation.",
		}, []string{"step", "result"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_actions_total",
			Help:      "Recorded payment actions.",
		}, []string{"action"}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_audit_anomalies_total",
			Help:      "Inconsistencies found while replaying payment audit history.",
		}, []string{"kind"}),
		verifyRuns: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "audit_verify_duration_seconds",
			Help:      "Duration of audit verification sweeps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.transitions,
		m.conflicts,
		m.retries,
		m.rejections,
		m.compensation,
		m.payments,
		m.anomalies,
		m.verifyRuns,
	)
	return m
}

func (m *Procurement) Transition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *Procurement) Conflict(operation string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *Procurement) Retry(operation string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *Procurement) CreditRejected() {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.Inc()
}

// Compensated counts one undo step; failed reports whether the undo itself errored.
func (m *Procurement) Compensated(step string, failed bool) {
	if m == nil || m.compensation == nil {
		return
	}
	result := "ok"
	if failed {
		result = "failed"
	}
	m.compensation.WithLabelValues(normalizeLabel(step), result).Inc()
}

func (m *Procurement) PaymentAction(action string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(action)).Inc()
}

func (m *Procurement) Anomaly(kind string) {
	if m == nil || m.anomalies == nil {
		return
	}
	m.anomalies.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Procurement) ObserveVerify(duration time.Duration, err error) {
	if m == nil || m.verifyRuns == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.verifyRuns.WithLabelValues(result).Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
