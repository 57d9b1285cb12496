package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess        = "success"
	outcomeError          = "error"
	outcomeRefresh        = "refresh"
	outcomeTransportError = "transport_error"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roombook_client",
			Name:      "requests_total",
			Help:      "Backend calls by path template and outcome.",
		},
		[]string{"path", "outcome"},
	)

	refreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roombook_client",
			Name:      "token_refresh_total",
			Help:      "Token refresh attempts by result.",
		},
		[]string{"result"},
	)

	sessionTerminations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roombook_client",
			Name:      "session_terminations_total",
			Help:      "Sessions ended because the refresh token was rejected or the refresh failed.",
		},
		[]string{"reason"},
	)
)
