package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds. The pipeline is dominated by the
	// remote classifier call, so buckets reach past the default timeout.
	latencyBuckets = []float64{
		1, 5, 10,
		25, 50, 100,
		250, 500, 1000,
		2500, 5000, 10000,
	}

	DecisionTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "modguard_decisions_total",
			Help: "Total number of moderation decisions",
		},
		[]string{"layer", "allowed"},
	)

	PipelineLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modguard_pipeline_latency_ms",
			Help:    "Moderation pipeline latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"mode"}, // "full" or "quick"
	)

	LayerErrorTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "modguard_layer_errors_total",
			Help: "Layer failures, by layer and whether the error was fatal to the request",
		},
		[]string{"layer", "fatal"},
	)

	BlocklistReloadTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "modguard_blocklist_reloads_total",
			Help: "Blocklist reload attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

// Handler serves the module registry, for mounting on the metrics listener.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
