package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/events"
	"github.com/USA-RedDragon/arm-panel/internal/rosbridge"
)

const (
	ControlExecute   = "execute"
	ControlRunScript = "run_script"

	GripperMin = 0
	GripperMax = 700

	runScriptCooldown = time.Second

	labelExecute       = "Execute Movement"
	labelExecuting     = "Executing..."
	labelRunScript     = "▶ Run Script"
	labelRunningScript = "Running..."
)

// MoveForm is the operator's raw input, parsed only once the connection check
// has passed.
type MoveForm struct {
	Joints  [6]string
	Gripper string
}

type MoveCommand struct {
	Positions    [6]float64 `json:"pos"`
	Velocity     float64    `json:"vel"`
	Acceleration float64    `json:"acc"`
}

//nolint:golint,gochecknoglobals
var (
	decimalPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	integerPrefix = regexp.MustCompile(`^[+-]?\d+`)
)

// ParseJoint reads the leading number of a joint value, so "12abc" is 12.
// Anything without one, or that is not finite, is 0.
func ParseJoint(s string) float64 {
	prefix := decimalPrefix.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return 0
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseStroke reads the leading integer of the gripper stroke, so "350.5" is
// 350, clamped to [GripperMin, GripperMax].
func ParseStroke(s string) int {
	prefix := integerPrefix.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return GripperMin
	}
	// Out of range values come back saturated, which the clamp handles.
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return GripperMin
	}
	return int(min(max(v, GripperMin), GripperMax))
}

func (f MoveForm) Command(velocity, acceleration float64) MoveCommand {
	cmd := MoveCommand{Velocity: velocity, Acceleration: acceleration}
	for i, joint := range f.Joints {
		cmd.Positions[i] = ParseJoint(joint)
	}
	return cmd
}

type Dispatcher struct {
	conn         *Connection
	console      *Console
	notifier     Notifier
	recorder     Recorder
	metrics      Metrics
	schedule     Scheduler
	velocity     float64
	acceleration float64

	moveInFlight   atomic.Bool
	scriptInFlight atomic.Bool
}

func NewDispatcher(conn *Connection, console *Console, notifier Notifier, recorder Recorder, metrics Metrics, schedule Scheduler, velocity, acceleration float64) *Dispatcher {
	if schedule == nil {
		schedule = afterFunc
	}
	return &Dispatcher{
		conn:         conn,
		console:      console,
		notifier:     notifier,
		recorder:     recorder,
		metrics:      metrics,
		schedule:     schedule,
		velocity:     velocity,
		acceleration: acceleration,
	}
}

func (d *Dispatcher) channels(kind Kind) (*ChannelSet, error) {
	cs, err := d.conn.Channels()
	if err != nil {
		toast(d.notifier, events.LevelError, "Not connected to robot")
		d.metrics.IncrementCommands(string(kind), "not_connected")
		return nil, err
	}
	return cs, nil
}

func (d *Dispatcher) affordance(control string, enabled bool, label string) {
	d.notifier.Publish(events.AffordanceEvent{Control: control, Enabled: enabled, Label: label})
}

// Affordances reports the current state of the command triggers.
func (d *Dispatcher) Affordances() []events.AffordanceEvent {
	execute := events.AffordanceEvent{Control: ControlExecute, Enabled: true, Label: labelExecute}
	if d.moveInFlight.Load() {
		execute = events.AffordanceEvent{Control: ControlExecute, Enabled: false, Label: labelExecuting}
	}
	runScript := events.AffordanceEvent{Control: ControlRunScript, Enabled: true, Label: labelRunScript}
	if d.scriptInFlight.Load() {
		runScript = events.AffordanceEvent{Control: ControlRunScript, Enabled: false, Label: labelRunningScript}
	}
	return []events.AffordanceEvent{execute, runScript}
}

// ExecuteMovement sends the joint move and, only if it succeeds, the gripper
// stroke. At most one movement is in flight at a time.
func (d *Dispatcher) ExecuteMovement(ctx context.Context, form MoveForm) error {
	cs, err := d.channels(KindMove)
	if err != nil {
		return err
	}
	if !d.moveInFlight.CompareAndSwap(false, true) {
		d.metrics.IncrementCommands(string(KindMove), "busy")
		return fmt.Errorf("%w: movement already executing", ErrBusy)
	}
	defer d.moveInFlight.Store(false)

	cmd := form.Command(d.velocity, d.acceleration)
	stroke := ParseStroke(form.Gripper)

	d.affordance(ControlExecute, false, labelExecuting)
	defer d.affordance(ControlExecute, true, labelExecute)

	start := time.Now()
	_, err = cs.MoveJoint.Call(ctx, cmd)
	d.metrics.ObserveMoveJointDuration(time.Since(start).Seconds())
	if err != nil {
		d.recorder.Record(KindMove, cmd, OutcomeFailed, err)
		d.metrics.IncrementCommands(string(KindMove), OutcomeFailed)
		if errors.Is(err, ErrChannelReleased) {
			return err
		}
		slog.Error("MoveJoint error", "error", err)
		d.console.Log(events.LevelError, "MoveJoint error: "+err.Error())
		toast(d.notifier, events.LevelError, "Execution failed")
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	d.recorder.Record(KindMove, cmd, OutcomeOK, nil)
	d.metrics.IncrementCommands(string(KindMove), OutcomeOK)

	gripper := rosbridge.Int32{Data: int32(stroke)} //nolint:gosec // clamped to [0, 700]
	if cs.Released() {
		slog.Warn("Dropping gripper command, connection went away during the move", "stroke", stroke)
		d.recorder.Record(KindGripper, gripper, OutcomeFailed, ErrChannelReleased)
		d.metrics.IncrementCommands(string(KindGripper), OutcomeFailed)
		return ErrChannelReleased
	}
	if err := cs.Gripper.Publish(gripper); err != nil {
		d.recorder.Record(KindGripper, gripper, OutcomeFailed, err)
		d.metrics.IncrementCommands(string(KindGripper), OutcomeFailed)
		if errors.Is(err, ErrChannelReleased) {
			slog.Warn("Dropping gripper command, connection went away during the move", "stroke", stroke)
			return err
		}
		slog.Error("Error publishing gripper command", "error", err)
		toast(d.notifier, events.LevelError, "Execution failed")
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	d.recorder.Record(KindGripper, gripper, OutcomeOK, nil)
	d.metrics.IncrementCommands(string(KindGripper), OutcomeOK)

	toast(d.notifier, events.LevelSuccess, "Command executed")
	return nil
}

// RunScript publishes the script and re-enables its trigger after a fixed
// delay. Results arrive separately on the console; nothing correlates them.
func (d *Dispatcher) RunScript(_ context.Context, text string) error {
	code := strings.TrimSpace(text)
	if code == "" {
		toast(d.notifier, events.LevelError, "No code to execute")
		return ErrEmptyScript
	}
	cs, err := d.channels(KindScript)
	if err != nil {
		return err
	}
	if !d.scriptInFlight.CompareAndSwap(false, true) {
		d.metrics.IncrementCommands(string(KindScript), "busy")
		return fmt.Errorf("%w: script run cooling down", ErrBusy)
	}

	d.affordance(ControlRunScript, false, labelRunningScript)
	d.console.Log(events.LevelInfo, "Executing script...")

	err = cs.Script.Publish(rosbridge.String{Data: code})
	d.schedule(runScriptCooldown, func() {
		d.scriptInFlight.Store(false)
		d.affordance(ControlRunScript, true, labelRunScript)
	})
	if err != nil {
		d.recorder.Record(KindScript, code, OutcomeFailed, err)
		d.metrics.IncrementCommands(string(KindScript), OutcomeFailed)
		if errors.Is(err, ErrChannelReleased) {
			return err
		}
		slog.Error("Error publishing script", "error", err)
		d.console.Log(events.LevelError, "Script publish failed: "+err.Error())
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	d.recorder.Record(KindScript, code, OutcomeOK, nil)
	d.metrics.IncrementCommands(string(KindScript), OutcomeOK)
	return nil
}
