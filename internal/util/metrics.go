package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_added_total",
		Help: "Total number of line items added to carts",
	})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"operation"})

	CartsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carts_expired_total",
		Help: "Total number of carts discarded on load because they expired",
	})

	CheckoutsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_submitted_total",
		Help: "Total number of checkout submissions accepted by the backend",
	})

	CheckoutsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_rejected_total",
		Help: "Total number of checkout submissions rejected by the validation gate",
	}, []string{"reason"})

	CheckoutsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_failed_total",
		Help: "Total number of checkout submissions that failed at the backend",
	})

	DiscountValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_validations_total",
		Help: "Total number of discount code validations",
	}, []string{"result"})

	AnalyticsEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_events_published_total",
		Help: "Total number of conversion events published",
	}, []string{"event_type"})

	AnalyticsEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analytics_events_dropped_total",
		Help: "Total number of conversion events that could not be published",
	})

	TrackerDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_deliveries_total",
		Help: "Total number of event deliveries to external trackers",
	}, []string{"tracker", "outcome"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Latency of requests to the retailer backend API",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

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
