package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AdsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ads_submitted_total",
		Help: "Total number of ads persisted at checkout",
	})

	CheckoutSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Total number of checkout session creation attempts",
	}, []string{"result"})

	CheckoutValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_validation_failures_total",
		Help: "Total number of ad drafts rejected at validation",
	})

	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Total number of payment webhook events received",
	}, []string{"kind"})

	WebhookSignatureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_webhook_signature_failures_total",
		Help: "Total number of webhook deliveries with bad signatures",
	})

	WebhookAnomaliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_webhook_anomalies_total",
		Help: "Webhook events referencing unknown ad records",
	})

	AdsPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ads_paid_total",
		Help: "Total number of ads with confirmed payment",
	})

	AdsApprovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ads_approved_total",
		Help: "Total number of ads approved by moderation",
	})

	AdsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ads_rejected_total",
		Help: "Total number of ads rejected by moderation",
	})

	RefundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refunds_total",
		Help: "Total number of refund attempts",
	}, []string{"result"})

	NotificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Total number of failed transactional email sends",
	}, []string{"kind"})

	PaymentGatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_gateway_latency_seconds",
		Help:    "Latency of outbound payment gateway calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	ListingCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_cache_total",
		Help: "Listing cache lookups by outcome",
	}, []string{"outcome"})

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
