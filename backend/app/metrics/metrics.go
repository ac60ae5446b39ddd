package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	requestsName      = "bugtracker_http_requests_total"
	durationName      = "bugtracker_http_request_duration_seconds"
	notificationsName = "bugtracker_notifications_total"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	notifications *prometheus.CounterVec
}

func New(r prometheus.Registerer) *Metrics {
	return &Metrics{
		requests: promauto.With(r).NewCounterVec(
			prometheus.CounterOpts{
				Name: requestsName,
				Help: "Total number of HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "code"},
		),
		duration: promauto.With(r).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    durationName,
				Help:    "HTTP request latency by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		notifications: promauto.With(r).NewCounterVec(
			prometheus.CounterOpts{
				Name: notificationsName,
				Help: "Ticket notifications by outcome (sent, failed, dropped).",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) NotificationResult(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}
