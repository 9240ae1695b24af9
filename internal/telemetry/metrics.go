package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var defaultRegistry = newRegistry()

type registry struct {
	reg                  *prometheus.Registry
	toolCalls            *prometheus.CounterVec
	toolDuration         *prometheus.HistogramVec
	upstreamErrors       *prometheus.CounterVec
	journalWriteFailures prometheus.Counter
	eventPublishFailures prometheus.Counter
}

func newRegistry() *registry {
	r := &registry{
		reg: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ynabhub_tool_calls_total",
			Help: "Tool invocations by tool and outcome.",
		}, []string{"tool", "status"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ynabhub_tool_duration_seconds",
			Help:    "Tool invocation latency.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"tool"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ynabhub_upstream_errors_total",
			Help: "Failed YNAB API calls by error kind and HTTP status (0 when no response).",
		}, []string{"kind", "status"}),
		journalWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ynabhub_journal_write_failures_total",
			Help: "Tool calls that could not be written to the journal.",
		}),
		eventPublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ynabhub_event_publish_failures_total",
			Help: "Domain events that could not be published.",
		}),
	}
	r.reg.MustRegister(
		r.toolCalls,
		r.toolDuration,
		r.upstreamErrors,
		r.journalWriteFailures,
		r.eventPublishFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func IncToolCall(toolName, status string) {
	defaultRegistry.toolCalls.WithLabelValues(toolName, status).Inc()
}

func ObserveToolDuration(toolName string, d time.Duration) {
	defaultRegistry.toolDuration.WithLabelValues(toolName).Observe(d.Seconds())
}

func IncUpstreamError(kind string, statusCode int) {
	defaultRegistry.upstreamErrors.WithLabelValues(kind, strconv.Itoa(statusCode)).Inc()
}

func IncJournalWriteFailure() {
	defaultRegistry.journalWriteFailures.Inc()
}

func IncEventPublishFailure() {
	defaultRegistry.eventPublishFailures.Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(defaultRegistry.reg, promhttp.HandlerOpts{})
}
