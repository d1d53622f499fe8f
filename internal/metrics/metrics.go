package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quote metrics
	QuotesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_quotes_submitted_total",
			Help: "Total number of quotes admitted, by swap mode",
		},
		[]string{"swap_mode"},
	)

	QuotesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_quotes_rejected_total",
			Help: "Total number of quote requests rejected at validation",
		},
		[]string{"code"},
	)

	OffersPerQuote = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rfq_offers_per_quote",
		Help:    "Number of resolved offers returned per quote",
		Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
	})

	CollectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rfq_collection_duration_seconds",
		Help:    "Time from quote admission to aggregated result",
		Buckets: []float64{0.5, 1, 2, 3, 4, 5, 10},
	})

	// Offer metrics
	OffersAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_offers_accepted_total",
			Help: "Total number of solver offers stored, by swap mode",
		},
		[]string{"swap_mode"},
	)

	OffersDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_offers_dropped_total",
			Help: "Total number of solver offers dropped, by reason",
		},
		[]string{"reason"},
	)

	ConnectedSolvers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rfq_connected_solvers",
		Help: "Number of open solver sessions",
	})

	BroadcastsForwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rfq_broadcasts_forwarded_total",
		Help: "Total number of quote broadcasts written to solver sessions",
	})

	// Settlement metrics
	Settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_settlements_total",
			Help: "Total number of accept requests, by outcome",
		},
		[]string{"status"},
	)

	SettlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rfq_settlement_duration_seconds",
		Help:    "Duration of the execute_intents chain call",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rfq_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
