// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atelier_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	StockMovements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_stock_movements_total",
			Help: "Stock movements applied, by item kind and operation",
		},
		[]string{"kind", "operation"},
	)

	StockAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_stock_alerts_total",
			Help: "Stock movements that left an item at or below its alert threshold",
		},
		[]string{"kind"},
	)

	TaskTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_task_transitions_total",
			Help: "Production task transitions, by event type",
		},
		[]string{"event"},
	)

	ProductionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "atelier_productions_created_total",
			Help: "Productions created",
		},
	)

	TasksMaterialized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "atelier_tasks_materialized_total",
			Help: "Production tasks created from task templates",
		},
	)
)
