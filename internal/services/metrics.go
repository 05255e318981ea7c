package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// ordersSubmitted counts order submissions by outcome
	// (created, replayed, invalid, failed).
	ordersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_submitted_total",
			Help: "Total number of order submissions.",
		},
		[]string{"outcome"},
	)

	// adminNotifications counts admin alerts by outcome (sent, skipped, failed).
	adminNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_notifications_total",
			Help: "Total number of new-order admin notifications.",
		},
		[]string{"outcome"},
	)

	// botUpdates counts inbound updates by classified command; "ignored"
	// and "duplicate" cover updates that got no reply.
	botUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of inbound bot updates.",
		},
		[]string{"command"},
	)
)

func init() {
	prometheus.MustRegister(ordersSubmitted, adminNotifications, botUpdates)
}
