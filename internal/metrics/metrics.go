// Package metrics holds the domain-level Prometheus collectors. HTTP
// metrics live in the middleware; these count business operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medirides_rides_created_total",
		Help: "Number of rides booked",
	})

	RideTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medirides_ride_transitions_total",
		Help: "Ride lifecycle transitions by source and target status",
	}, []string{"from", "to"})

	RejectedTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medirides_ride_transitions_rejected_total",
		Help: "Ride status updates rejected by lifecycle validation",
	})

	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medirides_auth_failures_total",
		Help: "Failed authentication attempts",
	})
)
