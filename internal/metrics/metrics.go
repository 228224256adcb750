package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	codeExchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "somgil",
			Name:      "code_exchange_total",
			Help:      "Count of authorization-code exchanges by result.",
		},
		[]string{"result"},
	)

	reservationSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "somgil",
			Name:      "reservation_submission_total",
			Help:      "Count of reservation submissions by outcome.",
		},
		[]string{"outcome"},
	)

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "somgil",
			Name:      "api_request_total",
			Help:      "Count of backend API requests by endpoint and result.",
		},
		[]string{"endpoint", "result"},
	)

	sessionCleared = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "somgil",
			Name:      "session_cleared_total",
			Help:      "Count of session clears (logout or expired token).",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(codeExchanges, reservationSubmissions, apiRequests, sessionCleared)
	})
}

func IncCodeExchange(result string) {
	codeExchanges.WithLabelValues(result).Inc()
}

func IncReservationSubmission(outcome string) {
	reservationSubmissions.WithLabelValues(outcome).Inc()
}

func IncAPIRequest(endpoint, result string) {
	apiRequests.WithLabelValues(endpoint, result).Inc()
}

func IncSessionCleared() {
	sessionCleared.Inc()
}
