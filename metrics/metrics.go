// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Voter labels
const (
	VoterUser  = "user"
	VoterGuest = "guest"
)

// Poll labels
const (
	PollDate = "date"
	PollGame = "game"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardnight_http_requests_total",
		Help: "HTTP requests by route pattern, method and status code",
	}, []string{"route", "method", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boardnight_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardnight_votes_cast_total",
		Help: "Votes recorded by poll kind and voter identity",
	}, []string{"poll", "voter"})

	GuestsJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardnight_guests_joined_total",
		Help: "Guest participants created through a share link",
	})

	DatesFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardnight_dates_finalized_total",
		Help: "Date polls finalized by their creator",
	})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
