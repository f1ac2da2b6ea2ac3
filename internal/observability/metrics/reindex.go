package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReindexMetrics tracks corpus rebuilds triggered by events or startup.
type ReindexMetrics struct {
	registry *prometheus.Registry

	rebuildTotal    *prometheus.CounterVec
	rebuildDuration *prometheus.HistogramVec
	rebuildInFlight prometheus.Gauge
	chunksIndexed   *prometheus.GaugeVec
	eventLag        *prometheus.HistogramVec
}

func NewReindexMetrics(service string) *ReindexMetrics {
	registry := prometheus.NewRegistry()

	rebuildTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ra",
			Subsystem: "reindex",
			Name:      "rebuilds_total",
			Help:      "Total corpus rebuilds by status.",
		},
		[]string{"service", "status"},
	)
	rebuildDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ra",
			Subsystem: "reindex",
			Name:      "rebuild_duration_seconds",
			Help:      "Corpus rebuild duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	rebuildInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ra",
			Subsystem: "reindex",
			Name:      "rebuilds_in_flight",
			Help:      "Number of running corpus rebuilds.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chunksIndexed := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ra",
			Subsystem: "reindex",
			Name:      "chunks_indexed",
			Help:      "Chunk count of the most recent successful rebuild.",
		},
		[]string{"service"},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ra",
			Subsystem: "reindex",
			Name:      "event_lag_seconds",
			Help:      "Delay between a corpus-changed event and rebuild start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service"},
	)

	registry.MustRegister(rebuildTotal, rebuildDuration, rebuildInFlight, chunksIndexed, eventLag)

	return &ReindexMetrics{
		registry:        registry,
		rebuildTotal:    rebuildTotal,
		rebuildDuration: rebuildDuration,
		rebuildInFlight: rebuildInFlight,
		chunksIndexed:   chunksIndexed,
		eventLag:        eventLag,
	}
}

func (m *ReindexMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ReindexMetrics) StartRebuild() {
	m.rebuildInFlight.Inc()
}

func (m *ReindexMetrics) FinishRebuild(service string, duration time.Duration, err error) {
	m.rebuildInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.rebuildTotal.WithLabelValues(service, status).Inc()
	m.rebuildDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *ReindexMetrics) SetChunksIndexed(service string, chunks int) {
	m.chunksIndexed.WithLabelValues(service).Set(float64(chunks))
}

func (m *ReindexMetrics) ObserveEventLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
}
