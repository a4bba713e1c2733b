// Package metrics exposes the Prometheus instrumentation for the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mistcurrent_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mistcurrent_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// OrdersCreatedTotal counts orders created, labelled by plan.
	OrdersCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mistcurrent_orders_created_total",
			Help: "Total number of orders created",
		},
		[]string{"plan"},
	)

	// OrderTransitionsTotal counts order state transitions.
	OrderTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mistcurrent_order_transitions_total",
			Help: "Total number of order state transitions",
		},
		[]string{"from", "to"},
	)

	// PaymentAttemptsTotal counts payment attempts by provider and result.
	PaymentAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mistcurrent_payment_attempts_total",
			Help: "Total number of payment attempts",
		},
		[]string{"provider", "result"},
	)

	// WebhookEventsTotal counts webhook events by provider, event type and outcome.
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mistcurrent_webhook_events_total",
			Help: "Total number of webhook events received",
		},
		[]string{"provider", "event", "outcome"},
	)

	// CardValidationsTotal counts card validation outcomes by brand and result.
	CardValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mistcurrent_card_validations_total",
			Help: "Total number of card validations",
		},
		[]string{"brand", "result"},
	)

	// SubscriptionsActiveTotal tracks currently active subscriptions.
	SubscriptionsActiveTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mistcurrent_subscriptions_active",
			Help: "Number of currently active subscriptions",
		},
	)

	// VPNConfigsIssuedTotal counts VPN configuration files issued by protocol.
	VPNConfigsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mistcurrent_vpn_configs_issued_total",
			Help: "Total number of VPN configuration files issued",
		},
		[]string{"protocol"},
	)
)
