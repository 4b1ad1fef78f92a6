package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PaymentInitiationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cashfree",
			Name:      "payment_initiations_total",
			Help:      "Checkout payment attempts by gateway and outcome",
		},
		[]string{"gateway", "outcome"},
	)

	RPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cashfree",
			Name:      "rpc_duration_seconds",
			Help:      "Duration of calls to the ERP and to Cashfree",
			Buckets:   []float64{0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10},
		},
		[]string{"target", "method", "status"},
	)

	WebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cashfree",
			Name:      "webhooks_total",
			Help:      "Cashfree webhooks received by event type and result",
		},
		[]string{"event_type", "result"},
	)
)

func init() {
	prometheus.MustRegister(PaymentInitiationsTotal, RPCDuration, WebhooksTotal)
}

func IncInitiation(gateway, outcome string) {
	PaymentInitiationsTotal.WithLabelValues(gateway, outcome).Inc()
}

func ObserveRPC(target, method, status string, seconds float64) {
	RPCDuration.WithLabelValues(target, method, status).Observe(seconds)
}

func IncWebhook(eventType, result string) {
	WebhooksTotal.WithLabelValues(eventType, result).Inc()
}
