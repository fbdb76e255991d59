// Package metrics - счетчики Prometheus, отдаются на /metrics
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "blog"
	subsystem = "api"
)

// Исходы сценария сброса пароля
const (
	ResetRequested      = "requested"
	ResetUnknownEmail   = "unknown_email"
	ResetSent           = "sent"
	ResetDeliveryFailed = "delivery_failed"
	ResetCompleted      = "completed"
	ResetRejected       = "rejected"
)

var (
	responseStatusM = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "responses_total",
			Help:      "Count of responses per route and status code",
		},
		[]string{"method", "route", "status"},
	)
	responseDurationM = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "response_duration_seconds",
			Help:      "Duration of response",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	passwordResetM = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "password_reset_total",
			Help:      "Password reset flow outcomes",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(responseStatusM)
	prometheus.MustRegister(responseDurationM)
	prometheus.MustRegister(passwordResetM)
}

// ObserveResponse учитывает завершенный HTTP запрос
func ObserveResponse(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	responseStatusM.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	responseDurationM.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// PasswordReset учитывает исход шага сброса пароля
func PasswordReset(outcome string) {
	passwordResetM.WithLabelValues(outcome).Inc()
}
