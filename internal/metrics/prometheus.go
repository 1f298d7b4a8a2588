package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	bridgeState        *prometheus.GaugeVec
	bridgeConnects     *prometheus.CounterVec
	commands           *prometheus.CounterVec
	moveJointDuration  prometheus.Histogram
	scriptResults      *prometheus.CounterVec
	gateAttempts       *prometheus.CounterVec
	uiConnections      prometheus.Gauge
	auditQueueSize     prometheus.Gauge
	auditActiveWorkers prometheus.Gauge
	auditErrors        *prometheus.CounterVec
}

// NewMetrics registers the panel's collectors with reg. Production passes
// prometheus.DefaultRegisterer; tests pass a fresh registry each time.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		bridgeState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bridge_connection_state",
			Help: "1 for the bridge connection state currently held, 0 for the others",
		}, []string{"state"}),
		bridgeConnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_connect_attempts_total",
			Help: "The total number of bridge connect attempts by outcome",
		}, []string{"outcome"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_commands_total",
			Help: "The total number of dispatched commands by kind and outcome",
		}, []string{"kind", "outcome"}),
		moveJointDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "move_joint_duration_seconds",
			Help:    "Time between sending a MoveJoint request and its response",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		scriptResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "script_results_total",
			Help: "The total number of script results received by classification",
		}, []string{"classification"}),
		gateAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gate_attempts_total",
			Help: "The total number of passcode attempts by outcome",
		}, []string{"outcome"}),
		uiConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ui_websocket_connections",
			Help: "The number of connected UI event websockets",
		}),
		auditQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "audit_queue_size",
			Help: "The number of audit records waiting to be written",
		}),
		auditActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "audit_active_workers",
			Help: "The number of audit writers currently busy",
		}),
		auditErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_errors_total",
			Help: "The total number of audit write errors",
		}, []string{"kind"}),
	}
	metrics.register(reg)
	return metrics
}

func (m *Metrics) register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.bridgeState,
		m.bridgeConnects,
		m.commands,
		m.moveJointDuration,
		m.scriptResults,
		m.gateAttempts,
		m.uiConnections,
		m.auditQueueSize,
		m.auditActiveWorkers,
		m.auditErrors,
	)
}

func (m *Metrics) SetBridgeState(current string, all ...string) {
	for _, state := range all {
		value := 0.0
		if state == current {
			value = 1
		}
		m.bridgeState.WithLabelValues(state).Set(value)
	}
}

func (m *Metrics) IncrementBridgeConnects(outcome string) {
	m.bridgeConnects.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementCommands(kind, outcome string) {
	m.commands.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveMoveJointDuration(seconds float64) {
	m.moveJointDuration.Observe(seconds)
}

func (m *Metrics) IncrementScriptResults(classification string) {
	m.scriptResults.WithLabelValues(classification).Inc()
}

func (m *Metrics) IncrementGateAttempts(outcome string) {
	m.gateAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetUIConnections(connections float64) {
	m.uiConnections.Set(connections)
}

func (m *Metrics) SetAuditQueueSize(size float64) {
	m.auditQueueSize.Set(size)
}

func (m *Metrics) SetAuditActiveWorkers(active float64) {
	m.auditActiveWorkers.Set(active)
}

func (m *Metrics) IncrementAuditErrors(kind string) {
	m.auditErrors.WithLabelValues(kind).Inc()
}
