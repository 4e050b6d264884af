// Package metrics exposes the relay's operational counters/gauges/histograms
// through a real Prometheus registry, rather than a hand-rolled text
// exporter: client_golang is wired directly, matching the rest of the
// example corpus's usage of the library for this exact concern.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles every metric the relay publishes. It is constructed once
// at boot and handed by reference to every package that needs to record
// observations.
type Registry struct {
	reg *prometheus.Registry

	DMDataConnected        prometheus.Gauge
	DMDataReconnects       *prometheus.CounterVec
	DMDataLastPongAge      prometheus.Gauge
	TelegramsReceived      *prometheus.CounterVec
	TelegramsDropped       *prometheus.CounterVec
	TelegramParseErrors    *prometheus.CounterVec
	TelegramParseDuration  *prometheus.HistogramVec
	SchedulerJobDuration   *prometheus.HistogramVec
	SchedulerJobSkipped    *prometheus.CounterVec
	SchedulerJobPanics     *prometheus.CounterVec
	FetchRequestDuration   *prometheus.HistogramVec
	FetchRequestFailures   *prometheus.CounterVec
	EEWArbitrationDecision *prometheus.CounterVec
	WebhookDeliveries      *prometheus.CounterVec
}

// NewRegistry builds a Registry and registers every collector against a
// fresh prometheus.Registry (never the global DefaultRegisterer, so tests
// and multiple instances never collide).
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		DMDataConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "relay",
			Subsystem: "dmdata",
			Name:      "connected",
			Help:      "1 if the dmdata WebSocket session is currently active, 0 otherwise.",
		}),
		DMDataReconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "dmdata",
			Name:      "reconnects_total",
			Help:      "Count of dmdata reconnect attempts, labeled by reason.",
		}, []string{"reason"}),
		DMDataLastPongAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "relay",
			Subsystem: "dmdata",
			Name:      "last_pong_age_seconds",
			Help:      "Seconds since the last pong was received from dmdata.",
		}),
		TelegramsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "telegram",
			Name:      "received_total",
			Help:      "Count of telegrams received, labeled by head type.",
		}, []string{"head_type"}),
		TelegramsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "telegram",
			Name:      "dropped_total",
			Help:      "Count of telegrams dropped before dispatch, labeled by reason.",
		}, []string{"reason"}),
		TelegramParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "telegram",
			Name:      "parse_errors_total",
			Help:      "Count of telegram parse failures, labeled by head type.",
		}, []string{"head_type"}),
		TelegramParseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "relay",
			Subsystem: "telegram",
			Name:      "parse_duration_seconds",
			Help:      "Telegram parse latency, labeled by head type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"head_type"}),
		SchedulerJobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "relay",
			Subsystem: "scheduler",
			Name:      "job_duration_seconds",
			Help:      "Scheduled job execution latency, labeled by job name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		SchedulerJobSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "scheduler",
			Name:      "job_skipped_total",
			Help:      "Count of job ticks skipped because the previous run was still in flight.",
		}, []string{"job"}),
		SchedulerJobPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "scheduler",
			Name:      "job_panics_total",
			Help:      "Count of recovered panics inside scheduled jobs.",
		}, []string{"job"}),
		FetchRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "relay",
			Subsystem: "fetch",
			Name:      "request_duration_seconds",
			Help:      "Poll fetcher HTTP request latency, labeled by source.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		FetchRequestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "fetch",
			Name:      "request_failures_total",
			Help:      "Count of poll fetcher request failures, labeled by source.",
		}, []string{"source"}),
		EEWArbitrationDecision: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "eewarbiter",
			Name:      "decisions_total",
			Help:      "Count of EEW arbitration decisions, labeled by chosen source.",
		}, []string{"source"}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "webhook",
			Name:      "deliveries_total",
			Help:      "Count of outbound sink delivery attempts, labeled by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}

	reg.MustRegister(
		r.DMDataConnected,
		r.DMDataReconnects,
		r.DMDataLastPongAge,
		r.TelegramsReceived,
		r.TelegramsDropped,
		r.TelegramParseErrors,
		r.TelegramParseDuration,
		r.SchedulerJobDuration,
		r.SchedulerJobSkipped,
		r.SchedulerJobPanics,
		r.FetchRequestDuration,
		r.FetchRequestFailures,
		r.EEWArbitrationDecision,
		r.WebhookDeliveries,
	)

	return r
}

// Gatherer exposes the underlying prometheus.Gatherer for wiring into
// promhttp.HandlerFor from internal/httpapi.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
