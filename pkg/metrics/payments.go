package metrics

import "github.com/prometheus/client_golang/prometheus"

// PaymentMetrics tracks gateway traffic and callback reconciliation.
type PaymentMetrics struct {
	pushes    *prometheus.CounterVec
	callbacks *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	pushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_stk_pushes_total",
		Help: "STK push initiations, by result.",
	}, []string{"result"})
	callbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callbacks_total",
		Help: "Gateway callbacks reconciled, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(pushes, callbacks)
	return &PaymentMetrics{
		pushes:    pushes,
		callbacks: callbacks,
	}
}

// IncPush records one STK push initiation result (accepted/rejected/error).
func (m *PaymentMetrics) IncPush(result string) {
	if m == nil || m.pushes == nil {
		return
	}
	m.pushes.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncCallback records one reconciled callback outcome
// (completed/failed/replay/unmatched).
func (m *PaymentMetrics) IncCallback(outcome string) {
	if m == nil || m.callbacks == nil {
		return
	}
	m.callbacks.WithLabelValues(normalizeLabel(outcome)).Inc()
}
