package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders placed through checkout",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Total number of order status transitions by target status",
	}, []string{"status"})

	SagaStepFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saga_step_failures_total",
		Help: "Total number of failed saga steps",
	}, []string{"saga", "step", "kind"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of the checkout workflow",
		Buckets: prometheus.DefBuckets,
	})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations by operation",
	}, []string{"op"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Total number of invoice notifications by result",
	}, []string{"result"})

	AnalyticsCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_cache_total",
		Help: "Analytics dashboard cache lookups by result",
	}, []string{"result"})

	EventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_consumed_total",
		Help: "Total number of consumed domain events by type",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
