package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machinewatch_http_requests_total",
			Help: "HTTP requests served by the backend API.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "machinewatch_http_request_duration_seconds",
			Help:    "Latency of HTTP requests served by the backend API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// signInTotal counts sign-in outcomes; source is store, fallback or
	// not_found.
	signInTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machinewatch_auth_signin_total",
			Help: "Sign-in attempts by result and credential source.",
		},
		[]string{"result", "source"},
	)

	sessionChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machinewatch_auth_session_checks_total",
			Help: "Session verification requests by result.",
		},
		[]string{"result"},
	)
)
