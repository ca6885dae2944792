// Package metrics exposes the Prometheus collectors of the rental service.
//
// Collectors are package globals registered on the default registry by
// InitMetrics; the /metrics route serves them through promhttp.
//
// Families:
//   - http_*: request count, latency and in-flight gauge (gin middleware)
//   - orders_* / order_*: order creation throughput and latency
//   - stock_shortfalls_total: reservations rejected for lack of stock
//   - fulfillment_items_total: dispatched and returned units
//   - payments_total, refunds_*: payment ledger activity
//   - circuit_breaker_*, messages_published_total: notification publisher
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP

	// HTTPRequestsTotal labels: method, path, status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration labels: method, path
	HTTPRequestDuration *prometheus.HistogramVec

	HTTPRequestsInProgress prometheus.Gauge

	// orders

	OrdersCreatedTotal prometheus.Counter

	// OrdersFailedTotal labels: reason (insufficient_stock, not_found, invalid, internal)
	OrdersFailedTotal *prometheus.CounterVec

	OrderCreationDuration prometheus.Histogram

	OrdersInProgress prometheus.Gauge

	// OrderUpdatesTotal labels: result (success/failure)
	OrderUpdatesTotal *prometheus.CounterVec

	// inventory

	// StockShortfallsTotal labels: operation (create/update)
	StockShortfallsTotal *prometheus.CounterVec

	// InventoryRestockedUnits units added through AddStock
	InventoryRestockedUnits prometheus.Counter

	// fulfillment

	// FulfillmentItemsTotal labels: kind (dispatch/return)
	FulfillmentItemsTotal *prometheus.CounterVec

	// payments

	// PaymentsTotal labels: stage, type (credit/debit)
	PaymentsTotal *prometheus.CounterVec

	// PaymentsRejectedTotal labels: reason (exceeds_balance/already_paid)
	PaymentsRejectedTotal *prometheus.CounterVec

	RefundsCreatedTotal prometheus.Counter

	// RefundsResolvedTotal labels: status (approved/rejected)
	RefundsResolvedTotal *prometheus.CounterVec

	// circuit breaker

	// CircuitBreakerState 0=CLOSED, 1=OPEN, 2=HALF_OPEN. labels: name
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests labels: name, result (success/failure/rejected)
	CircuitBreakerRequests *prometheus.CounterVec

	// messaging

	// MessagesPublishedTotal labels: exchange, routing_key
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics registers every collector. Safe to call more than once.
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "HTTP requests currently being served",
		},
	)

	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders created from bookings",
		},
	)

	OrdersFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "Order creations that were rolled back",
		},
		[]string{"reason"},
	)

	// creation runs in one database transaction; buckets sized for that
	OrderCreationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_creation_duration_seconds",
			Help:    "Order creation latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	OrdersInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orders_in_progress",
			Help: "Order creations currently running",
		},
	)

	OrderUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_updates_total",
			Help: "Order updates by result",
		},
		[]string{"result"},
	)

	StockShortfallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_shortfalls_total",
			Help: "Reservations rejected for insufficient stock",
		},
		[]string{"operation"},
	)

	InventoryRestockedUnits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_restocked_units_total",
			Help: "Units added to inventory",
		},
	)

	FulfillmentItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_items_total",
			Help: "Units dispatched or returned",
		},
		[]string{"kind"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment ledger entries written",
		},
		[]string{"stage", "type"},
	)

	PaymentsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_rejected_total",
			Help: "Payments rejected by balance checks",
		},
		[]string{"reason"},
	)

	RefundsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refunds_created_total",
			Help: "Refunds opened for overpaid orders",
		},
	)

	RefundsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refunds_resolved_total",
			Help: "Refunds approved or rejected",
		},
		[]string{"status"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=CLOSED, 1=OPEN, 2=HALF_OPEN)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests seen by a circuit breaker",
		},
		[]string{"name", "result"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "Messages published to the broker",
		},
		[]string{"exchange", "routing_key"},
	)
}

// helpers

func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

func AddCounter(counter prometheus.Counter, v float64) {
	counter.Add(v)
}

func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

func AddCounterVec(counter *prometheus.CounterVec, labels map[string]string, v float64) {
	counter.With(labels).Add(v)
}

func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
