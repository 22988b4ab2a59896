package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uarchive_registrations_total",
			Help: "Account registrations by outcome",
		},
		[]string{"result"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uarchive_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"},
	)

	TokensIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uarchive_tokens_issued_total",
			Help: "Access tokens issued",
		},
	)

	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uarchive_auth_failures_total",
			Help: "Rejected bearer authentications by reason",
		},
		[]string{"reason"},
	)

	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uarchive_votes_total",
			Help: "Applied vote adjustments by target kind",
		},
		[]string{"target"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uarchive_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uarchive_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
