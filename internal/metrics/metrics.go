// Package metrics exposes the Prometheus collectors for payment flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paysera",
			Name:      "callbacks_total",
			Help:      "Gateway callbacks by processing result",
		},
		[]string{"result"},
	)

	PaymentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paysera",
			Name:      "payment_requests_total",
			Help:      "Payment redirects built, by result",
		},
		[]string{"result"},
	)

	CallbackDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "paysera",
			Name:      "callback_duration_seconds",
			Help:      "Time spent handling a gateway callback",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paysera",
			Name:      "cache_requests_total",
			Help:      "Cache lookups by cache name and hit/miss",
		},
		[]string{"cache", "result"},
	)
)

func init() {
	prometheus.MustRegister(CallbacksTotal, PaymentRequestsTotal, CallbackDuration, CacheRequestsTotal)
}

func IncCallback(result string) {
	CallbacksTotal.WithLabelValues(result).Inc()
}

func IncPaymentRequest(result string) {
	PaymentRequestsTotal.WithLabelValues(result).Inc()
}

func IncCacheRequest(cache, result string) {
	CacheRequestsTotal.WithLabelValues(cache, result).Inc()
}
