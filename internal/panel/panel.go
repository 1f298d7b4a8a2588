package panel

import (
	"github.com/USA-RedDragon/arm-panel/internal/config"
	"github.com/USA-RedDragon/arm-panel/internal/events"
)

// Kind labels a dispatched command in the audit trail and metrics.
type Kind string

const (
	KindMove    Kind = "move"
	KindGripper Kind = "gripper"
	KindScript  Kind = "script"
	KindResult  Kind = "result"
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Recorder receives every dispatched command and script result. It must not
// block.
type Recorder interface {
	Record(kind Kind, detail any, outcome string, err error)
}

type Metrics interface {
	SetBridgeState(current string, all ...string)
	IncrementBridgeConnects(outcome string)
	IncrementCommands(kind, outcome string)
	ObserveMoveJointDuration(seconds float64)
	IncrementScriptResults(classification string)
	IncrementGateAttempts(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) Record(Kind, any, string, error) {}

type noopMetrics struct{}

func (noopMetrics) SetBridgeState(string, ...string) {}
func (noopMetrics) IncrementBridgeConnects(string)   {}
func (noopMetrics) IncrementCommands(string, string) {}
func (noopMetrics) ObserveMoveJointDuration(float64) {}
func (noopMetrics) IncrementScriptResults(string)    {}
func (noopMetrics) IncrementGateAttempts(string)     {}

type Options struct {
	Dial     DialFunc
	Sessions SessionStore
	Notifier Notifier
	// Recorder and Metrics are optional.
	Recorder Recorder
	Metrics  Metrics
	// Scheduler defaults to time.AfterFunc.
	Scheduler Scheduler
}

// Panel wires the gate, the connection with its registry, the dispatcher and
// the console around one shared notifier.
type Panel struct {
	Gate       *Gate
	Connection *Connection
	Dispatcher *Dispatcher
	Console    *Console
}

func New(cfg *config.Config, opts Options) *Panel {
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = afterFunc
	}

	console := NewConsole(cfg.Console.MaxEntries, opts.Notifier, opts.Recorder, opts.Metrics)
	registry := NewRegistry(cfg.Bridge.Topics, console.handleResultMessage)
	conn := NewConnection(opts.Dial, registry, opts.Notifier, opts.Metrics)

	return &Panel{
		Gate:       NewGate(cfg.Session.Passcode, opts.Sessions, opts.Notifier, opts.Metrics, opts.Scheduler),
		Connection: conn,
		Dispatcher: NewDispatcher(
			conn,
			console,
			opts.Notifier,
			opts.Recorder,
			opts.Metrics,
			opts.Scheduler,
			cfg.Bridge.Velocity,
			cfg.Bridge.Acceleration,
		),
		Console: console,
	}
}

// Snapshot is what a freshly attached view needs to render the current
// connection and trigger state.
func (p *Panel) Snapshot() []events.Event {
	status := p.Connection.Status()
	out := []events.Event{
		events.StateEvent{State: string(status.State), Endpoint: status.Endpoint},
		connectAffordance(status.State),
	}
	for _, a := range p.Dispatcher.Affordances() {
		out = append(out, a)
	}
	return out
}
