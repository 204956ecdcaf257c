// Package observability provides Prometheus collectors and OpenTelemetry
// tracing for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchfolio_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// AuthorizationDenials counts policy denials by action and reason.
	AuthorizationDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchfolio_authorization_denials_total",
		Help: "Total number of authorization denials by action and reason",
	}, []string{"action", "reason"})

	// CascadeDeletes counts cascading deletes by root entity type.
	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchfolio_cascade_deletes_total",
		Help: "Total number of cascading deletes by root entity type",
	}, []string{"entity"})
)
