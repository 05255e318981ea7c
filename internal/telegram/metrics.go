package telegram

import "github.com/prometheus/client_golang/prometheus"

var (
	// apiRequests counts Bot API calls by method and outcome
	// (ok, logical_error, transport_error, not_configured).
	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_api_requests_total",
			Help: "Total number of Telegram Bot API calls.",
		},
		[]string{"method", "outcome"},
	)

	apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telegram_api_request_duration_seconds",
			Help:    "Duration of Telegram Bot API calls in seconds.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(apiRequests, apiLatency)
}
