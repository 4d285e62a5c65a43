package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fees_http_requests_total",
		Help: "Total HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fees_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	PaymentsAppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fees_payments_applied_total",
		Help: "Ledger payment applications by method",
	}, []string{"method"})

	PaymentAmountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fees_payment_amount_paise_total",
		Help: "Total paise applied to the ledger by method",
	}, []string{"method"})

	OrdersCapturedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fees_orders_captured_total",
		Help: "Online payment orders captured",
	})

	DuplicateCapturesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fees_duplicate_captures_total",
		Help: "Verify calls that hit an already-captured order",
	})

	SignatureFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fees_signature_failures_total",
		Help: "Gateway callbacks rejected for invalid signature",
	})

	RemindersSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fees_reminders_sent_total",
		Help: "Escalation reminders sent by tier",
	}, []string{"tier"})
)
