// Package metrics exposes the Prometheus collectors and the structured zap
// logger cmd/server logs through. Only the two gauges are updated (by the
// transport hub and GameManager); the action, reject and death counters
// and the step-advance histogram are registered but nothing updates them,
// and the other packages log through the standard library. Grounded on
// L-quant-Blood-on-the-Clocktower-auto-dm's internal/observability
// (promauto-registered collectors, zap.NewProductionConfig), trimmed of
// the OpenTelemetry tracer plumbing that pack has no other caller for.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

type Metrics struct {
	ActiveConnections  prometheus.Gauge
	ActiveSessions     prometheus.Gauge
	ActionsTotal       *prometheus.CounterVec
	ActionRejectsTotal *prometheus.CounterVec
	StepAdvanceLatency prometheus.Observer
	DeathsTotal        *prometheus.CounterVec
}

func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer.(*prometheus.Registry)
	}
	return &Metrics{
		ActiveConnections: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "nightcore_ws_active_connections",
			Help: "Number of open websocket connections across all rooms",
		}),
		ActiveSessions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "nightcore_active_sessions",
			Help: "Number of night.Engine sessions currently held by the GameManager",
		}),
		ActionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nightcore_actions_total",
			Help: "PlayerMessages submitted to the engine, by message kind",
		}, []string{"kind"}),
		ActionRejectsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nightcore_action_rejects_total",
			Help: "PlayerMessages rejected by the validator, by reject reason",
		}, []string{"reason"}),
		StepAdvanceLatency: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "nightcore_step_advance_latency_ms",
			Help:    "Wall-clock time a step spent open before ADVANCE succeeded",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		}),
		DeathsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nightcore_deaths_total",
			Help: "Deaths computed by the death calculator, by cause",
		}, []string{"cause"}),
	}
}

// NewLogger builds the process-wide zap logger: JSON production encoding
// outside of development, human-readable console encoding inside it.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	return cfg.Build()
}
