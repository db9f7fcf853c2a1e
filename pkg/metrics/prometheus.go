package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for the reservation service.
type Metrics struct {
	ReservationsCreated prometheus.Counter
	PaymentsConfirmed   prometheus.Counter
	CheckoutSessions    *prometheus.CounterVec
	NotificationsSent   *prometheus.CounterVec
	StoreLatency        prometheus.Histogram
}

func New(namespace string) *Metrics {
	return &Metrics{
		ReservationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "The total number of reservations appended to the store",
		}),
		PaymentsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_confirmed_total",
			Help:      "The total number of payment confirmations applied",
		}),
		CheckoutSessions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_sessions_total",
			Help:      "Checkout sessions created per payment provider",
		}, []string{"provider"}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "WhatsApp notifications attempted, by outcome",
		}, []string{"outcome"}),
		StoreLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_seconds",
			Help:      "Time spent in reservation store operations",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
