// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopfloor"

var (
	// Registry holds every collector of this service
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders successfully placed.",
	})

	OrderStatusChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_updates_total",
		Help:      "Order status writes by target status and outcome.",
	}, []string{"status", "outcome"})

	ChecklistOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checklist_operations_total",
		Help:      "Checklist item writes by operation and outcome.",
	}, []string{"op", "outcome"})

	ActiveSockets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "summary_sockets_active",
		Help:      "Open dashboard summary websocket connections.",
	})

	SummaryPushes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "summary_pushes_total",
		Help:      "Dashboard summaries computed by the poller, by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		OrdersCreated,
		OrderStatusChanges,
		ChecklistOperations,
		ActiveSockets,
		SummaryPushes,
	)
}

// Outcome labels a result as "ok" or "error"
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler exposes the registry in the prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
