package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel",
		Name:      "records_imported_total",
		Help:      "Total number of raw source records imported",
	}, []string{"source"})

	EventsLinked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel",
		Name:      "events_linked_total",
		Help:      "Total number of source records linked to a canonical event",
	}, []string{"source"})

	RecordsUnresolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel",
		Name:      "records_unresolved_total",
		Help:      "Total number of source records whose identifier resolved to no entity",
	}, []string{"source"})

	AlertsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel",
		Name:      "alerts_generated_total",
		Help:      "Total number of alerts produced by the alert engine",
	}, []string{"category"})

	ModelTrainingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sentinel",
		Name:      "model_training_duration_seconds",
		Help:      "Duration of per-request model training",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"model"})

	FaceSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel",
		Name:      "face_searches_total",
		Help:      "Total number of face identity searches",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sentinel",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sentinel",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
