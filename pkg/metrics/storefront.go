package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics counts the observable storefront events: upstream
// fallbacks and simulated payment outcomes.
type StorefrontMetrics struct {
	remoteFallbacks *prometheus.CounterVec
	paymentOutcome  *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	remoteFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_fallback_total",
		Help: "Operations that fell back to the local store after an upstream failure.",
	}, []string{"collection", "operation"})
	paymentOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_outcome_total",
		Help: "Simulated payment results by method.",
	}, []string{"method", "result"})
	reg.MustRegister(remoteFallbacks, paymentOutcome)
	return &StorefrontMetrics{
		remoteFallbacks: remoteFallbacks,
		paymentOutcome:  paymentOutcome,
	}
}

// IncRemoteFallback counts a local-store fallback for the collection/operation.
func (m *StorefrontMetrics) IncRemoteFallback(collection, operation string) {
	if m == nil || m.remoteFallbacks == nil {
		return
	}
	m.remoteFallbacks.WithLabelValues(collection, operation).Inc()
}

// IncPaymentOutcome counts a payment result for the method.
func (m *StorefrontMetrics) IncPaymentOutcome(method, result string) {
	if m == nil || m.paymentOutcome == nil {
		return
	}
	m.paymentOutcome.WithLabelValues(method, result).Inc()
}
