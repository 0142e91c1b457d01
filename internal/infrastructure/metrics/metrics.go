package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketledger"

// Settlement outcome label values.
const (
	OutcomeSettled = "settled"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Settlement metrics
	Settlements          *prometheus.CounterVec
	SettlementDuration   prometheus.Histogram
	SettlementAmount     prometheus.Histogram
	StockRejections      prometheus.Counter
	CompensationFailures prometheus.Counter

	// Ledger metrics
	LedgerEntries        *prometheus.CounterVec
	LedgerAppendDuration prometheus.Histogram

	// Tracking token metrics
	TrackingTokensIssued    prometheus.Counter
	TrackingTokenCollisions prometheus.Counter

	// Notification metrics
	NotificationFailures *prometheus.CounterVec
	OutboxPublished      prometheus.Counter
	OutboxPublishErrors  prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Settlements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settlements_total",
				Help:      "Settlement attempts by outcome",
			},
			[]string{"outcome"},
		),
		SettlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_duration_seconds",
			Help:      "Duration of order settlement",
			Buckets:   prometheus.DefBuckets,
		}),
		SettlementAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_amount",
			Help:      "Amount charged to buyers per settled order",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		}),
		StockRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_rejections_total",
			Help:      "Settlements rejected for insufficient stock",
		}),
		CompensationFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compensation_failures_total",
			Help:      "Compensating actions that failed and need manual reconciliation",
		}),

		LedgerEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_entries_total",
				Help:      "Ledger entries appended",
			},
			[]string{"type", "bucket"},
		),
		LedgerAppendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_append_duration_seconds",
			Help:      "Duration of a ledger append including lock wait",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),

		TrackingTokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_tokens_issued_total",
			Help:      "Tracking tokens issued",
		}),
		TrackingTokenCollisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_token_collisions_total",
			Help:      "Generated tracking tokens that were already taken",
		}),

		NotificationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_failures_total",
				Help:      "Notifications that could not be enqueued",
			},
			[]string{"template"},
		),
		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox events published",
		}),
		OutboxPublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_publish_errors_total",
			Help:      "Outbox events that failed to publish",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
	}
}
