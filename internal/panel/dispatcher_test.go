package panel_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/config"
	"github.com/USA-RedDragon/arm-panel/internal/events"
	"github.com/USA-RedDragon/arm-panel/internal/panel"
	"github.com/USA-RedDragon/arm-panel/internal/rosbridge"
	"pgregory.net/rapid"
)

func TestExecuteMovementScenario(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	transport := h.connect(t)

	err := h.panel.Dispatcher.ExecuteMovement(context.Background(), panel.MoveForm{
		Joints:  joints("0", "0", "90", "0", "90", "0"),
		Gripper: "350",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := transport.serviceCalls()
	if len(calls) != 1 {
		t.Fatalf("expected one service call, got %d", len(calls))
	}
	if calls[0].Service != config.DefaultMoveJointService || calls[0].Type != config.DefaultMoveJointType {
		t.Fatalf("unexpected service %s (%s)", calls[0].Service, calls[0].Type)
	}
	var cmd panel.MoveCommand
	if err := json.Unmarshal(calls[0].Args, &cmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Positions != [6]float64{0, 0, 90, 0, 90, 0} || cmd.Velocity != 60 || cmd.Acceleration != 60 {
		t.Fatalf("unexpected move command %+v", cmd)
	}

	gripper := transport.publishedOn(config.DefaultGripperTopic)
	if len(gripper) != 1 || string(gripper[0]) != `{"data":350}` {
		t.Fatalf("unexpected gripper messages: %s", gripper)
	}
	if !h.notifier.hasToast("Command executed") {
		t.Fatalf("missing success toast")
	}

	affordances := h.notifier.affordances(panel.ControlExecute)
	if len(affordances) != 2 || affordances[0].Enabled || affordances[0].Label != "Executing..." || !affordances[1].Enabled {
		t.Fatalf("unexpected execute affordances: %+v", affordances)
	}
}

func TestExecuteMovementRequestFailureSkipsGripper(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	transport := h.connect(t)
	transport.respond = func(context.Context, string) (json.RawMessage, error) {
		return nil, &rosbridge.ServiceError{Service: config.DefaultMoveJointService}
	}

	err := h.panel.Dispatcher.ExecuteMovement(context.Background(), panel.MoveForm{Gripper: "700"})
	if !errors.Is(err, panel.ErrRequest) {
		t.Fatalf("expected request error, got %v", err)
	}
	if n := len(transport.publishedOn(config.DefaultGripperTopic)); n != 0 {
		t.Fatalf("gripper published %d times after a failed move", n)
	}
	if !h.notifier.hasToast("Execution failed") {
		t.Fatalf("missing failure toast")
	}
	if h.panel.Connection.State() != panel.StateConnected {
		t.Fatalf("request failure changed connection state")
	}
	affordances := h.notifier.affordances(panel.ControlExecute)
	if !affordances[len(affordances)-1].Enabled {
		t.Fatalf("execute affordance left disabled")
	}
	entries := h.panel.Console.Entries()
	if len(entries) == 0 || entries[len(entries)-1].Level != "error" {
		t.Fatalf("request failure not logged to the console: %+v", entries)
	}
}

func TestExecuteMovementGripperFollowsResponse(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness(rt)
		transport := h.connect(rt)
		succeed := rapid.Bool().Draw(rt, "succeed")
		stroke := rapid.IntRange(panel.GripperMin, panel.GripperMax).Draw(rt, "stroke")
		transport.respond = func(context.Context, string) (json.RawMessage, error) {
			if succeed {
				return json.RawMessage(`{"success":true}`), nil
			}
			return nil, errors.New("timeout")
		}

		_ = h.panel.Dispatcher.ExecuteMovement(context.Background(), panel.MoveForm{Gripper: strconv.Itoa(stroke)})

		gripper := transport.publishedOn(config.DefaultGripperTopic)
		if !succeed {
			if len(gripper) != 0 {
				rt.Fatalf("gripper published after failed move")
			}
			return
		}
		if len(gripper) != 1 {
			rt.Fatalf("expected exactly one gripper message, got %d", len(gripper))
		}
		var msg rosbridge.Int32
		if err := json.Unmarshal(gripper[0], &msg); err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if int(msg.Data) != stroke {
			rt.Fatalf("expected stroke %d, got %d", stroke, msg.Data)
		}
	})
}

func TestCommandsRequireConnection(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness(rt)
		var transport *fakeTransport
		switch rapid.SampledFrom([]string{"never", "disconnected", "hungup"}).Draw(rt, "history") {
		case "disconnected":
			transport = h.connect(rt)
			h.panel.Connection.Disconnect()
		case "hungup":
			transport = h.connect(rt)
			transport.hangup(errRemoteHangup)
		}
		before := 0
		if transport != nil {
			before = transport.messageCount()
		}

		var err error
		if rapid.Bool().Draw(rt, "movement") {
			err = h.panel.Dispatcher.ExecuteMovement(context.Background(), panel.MoveForm{
				Joints:  joints(rapid.String().Draw(rt, "joint")),
				Gripper: rapid.String().Draw(rt, "gripper"),
			})
			if n := len(h.notifier.affordances(panel.ControlExecute)); n != 0 {
				rt.Fatalf("execute affordance touched while not connected")
			}
		} else {
			err = h.panel.Dispatcher.RunScript(context.Background(), "print('hi')")
			if n := len(h.notifier.affordances(panel.ControlRunScript)); n != 0 {
				rt.Fatalf("run affordance touched while not connected")
			}
		}
		if !errors.Is(err, panel.ErrNotConnected) {
			rt.Fatalf("expected not connected, got %v", err)
		}
		if transport != nil && transport.messageCount() != before {
			rt.Fatalf("message sent while not connected")
		}
		if !h.notifier.hasToast("Not connected to robot") {
			rt.Fatalf("missing not connected toast")
		}
	})
}

func TestExecuteMovementSingleFlight(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	transport := h.connect(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	transport.respond = func(context.Context, string) (json.RawMessage, error) {
		close(entered)
		<-release
		return json.RawMessage(`{}`), nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = h.panel.Dispatcher.ExecuteMovement(context.Background(), panel.MoveForm{Gripper: "10"})
	}()
	<-entered

	err := h.panel.Dispatcher.ExecuteMovement(context.Background(), panel.MoveForm{Gripper: "20"})
	if !errors.Is(err, panel.ErrBusy) {
		t.Fatalf("expected busy, got %v", err)
	}

	close(release)
	wg.Wait()
	if firstErr != nil {
		t.Fatalf("unexpected error: %v", firstErr)
	}
	if len(transport.serviceCalls()) != 1 {
		t.Fatalf("second movement reached the bridge")
	}

	// Guard is released once the first movement settles.
	transport.respond = nil
	if err := h.panel.Dispatcher.ExecuteMovement(context.Background(), panel.MoveForm{Gripper: "30"}); err != nil {
		t.Fatalf("unexpected error after guard release: %v", err)
	}
}

func TestLateMoveResponseAfterDisconnectIsInert(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	transport := h.connect(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	transport.respond = func(context.Context, string) (json.RawMessage, error) {
		close(entered)
		<-release
		return json.RawMessage(`{}`), nil
	}

	done := make(chan error, 1)
	go func() {
		done <- h.panel.Dispatcher.ExecuteMovement(context.Background(), panel.MoveForm{Gripper: "500"})
	}()
	<-entered
	h.panel.Connection.Disconnect()
	close(release)

	err := <-done
	if !errors.Is(err, panel.ErrNotConnected) {
		t.Fatalf("expected released channel error, got %v", err)
	}
	if n := len(transport.publishedOn(config.DefaultGripperTopic)); n != 0 {
		t.Fatalf("late response published the gripper")
	}
	if h.notifier.hasToast("Command executed") {
		t.Fatalf("late response reported success")
	}
	affordances := h.notifier.affordances(panel.ControlExecute)
	if !affordances[len(affordances)-1].Enabled {
		t.Fatalf("execute affordance left disabled")
	}
}

func TestParseJoint(t *testing.T) {
	t.Parallel()
	cases := map[string]float64{
		"90":    90,
		" -12.5": -12.5,
		"":      0,
		"abc":   0,
		"NaN":   0,
		"Inf":   0,
		"1e2":   100,
		"12abc":  12,
		"-.5x":   -0.5,
		"1e400":  0,
	}
	for in, want := range cases {
		if got := panel.ParseJoint(in); got != want {
			t.Errorf("ParseJoint(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseStrokeReadsLeadingInteger(t *testing.T) {
	t.Parallel()
	cases := map[string]int{
		"350":                  350,
		"350.5":                350,
		" 120mm":               120,
		"-40":                  0,
		"9999":                 700,
		"99999999999999999999": 700,
		"abc":                  0,
		"":                     0,
	}
	for in, want := range cases {
		if got := panel.ParseStroke(in); got != want {
			t.Errorf("ParseStroke(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseStrokeAlwaysInRange(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		in := rapid.OneOf(
			rapid.String(),
			rapid.Map(rapid.Int(), strconv.Itoa),
		).Draw(rt, "in")
		got := panel.ParseStroke(in)
		if got < panel.GripperMin || got > panel.GripperMax {
			rt.Fatalf("ParseStroke(%q) = %d out of range", in, got)
		}
	})
}

func TestRunScriptPublishesExactText(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness(rt)
		transport := h.connect(rt)
		text := rapid.StringMatching(`[a-z(][a-z0-9()'" =\n]{0,40}[a-z)]`).Draw(rt, "text")

		if err := h.panel.Dispatcher.RunScript(context.Background(), text); err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		scripts := transport.publishedOn(config.DefaultScriptTopic)
		if len(scripts) != 1 {
			rt.Fatalf("expected one script message, got %d", len(scripts))
		}
		var msg rosbridge.String
		if err := json.Unmarshal(scripts[0], &msg); err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if msg.Data != text {
			rt.Fatalf("expected %q, got %q", text, msg.Data)
		}
	})
}

func TestRunScriptEmpty(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness(rt)
		transport := h.connect(rt)
		blank := rapid.StringOfN(rapid.SampledFrom([]rune{' ', '\t', '\n'}), 0, 10, -1).Draw(rt, "blank")

		err := h.panel.Dispatcher.RunScript(context.Background(), blank)
		if !errors.Is(err, panel.ErrInput) {
			rt.Fatalf("expected input error, got %v", err)
		}
		if n := len(transport.publishedOn(config.DefaultScriptTopic)); n != 0 {
			rt.Fatalf("published %d blank scripts", n)
		}
		if !h.notifier.hasToast("No code to execute") {
			rt.Fatalf("missing toast")
		}
	})
}

func TestRunScriptEmptyCheckedBeforeConnection(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	err := h.panel.Dispatcher.RunScript(context.Background(), "   ")
	if !errors.Is(err, panel.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	if h.notifier.hasToast("Not connected to robot") {
		t.Fatalf("connection checked before input")
	}
}

func TestRunScriptCooldown(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	transport := h.connect(t)

	if err := h.panel.Dispatcher.RunScript(context.Background(), "  print('a')  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := h.panel.Console.Entries()
	if len(entries) != 1 || entries[0].Text != "Executing script..." || entries[0].Level != "info" {
		t.Fatalf("unexpected console entries %+v", entries)
	}
	if len(h.scheduler.delays) != 1 || h.scheduler.delays[0] != time.Second {
		t.Fatalf("expected a single 1s re-enable, got %v", h.scheduler.delays)
	}

	if err := h.panel.Dispatcher.RunScript(context.Background(), "print('b')"); !errors.Is(err, panel.ErrBusy) {
		t.Fatalf("expected busy during cooldown, got %v", err)
	}

	h.scheduler.fire()
	affordances := h.notifier.affordances(panel.ControlRunScript)
	last := affordances[len(affordances)-1]
	if !last.Enabled || !strings.Contains(last.Label, "Run Script") {
		t.Fatalf("run affordance not re-enabled: %+v", last)
	}

	if err := h.panel.Dispatcher.RunScript(context.Background(), "print('b')"); err != nil {
		t.Fatalf("unexpected error after cooldown: %v", err)
	}
	scripts := transport.publishedOn(config.DefaultScriptTopic)
	if len(scripts) != 2 || string(scripts[0]) != `{"data":"print('a')"}` {
		t.Fatalf("unexpected scripts %s", scripts)
	}
}

func TestDispatcherRecordsAudit(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.connect(t)

	if err := h.panel.Dispatcher.ExecuteMovement(context.Background(), panel.MoveForm{Gripper: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.panel.Dispatcher.RunScript(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []recordedCommand{
		{Kind: panel.KindMove, Outcome: panel.OutcomeOK},
		{Kind: panel.KindGripper, Outcome: panel.OutcomeOK},
		{Kind: panel.KindScript, Outcome: panel.OutcomeOK},
	}
	h.recorder.mu.Lock()
	defer h.recorder.mu.Unlock()
	if len(h.recorder.records) != len(want) {
		t.Fatalf("expected %d records, got %+v", len(want), h.recorder.records)
	}
	for i := range want {
		if h.recorder.records[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, h.recorder.records[i], want[i])
		}
	}
}

func snapshotTriggers(p *panel.Panel) map[string]events.AffordanceEvent {
	out := map[string]events.AffordanceEvent{}
	for _, e := range p.Snapshot() {
		if a, ok := e.(events.AffordanceEvent); ok {
			out[a.Control] = a
		}
	}
	return out
}

func TestSnapshotReflectsBusyTriggers(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	transport := h.connect(t)

	release := make(chan struct{})
	started := make(chan struct{})
	transport.respond = func(context.Context, string) (json.RawMessage, error) {
		close(started)
		<-release
		return json.RawMessage(`{}`), nil
	}
	done := make(chan error, 1)
	go func() {
		done <- h.panel.Dispatcher.ExecuteMovement(context.Background(), panel.MoveForm{Joints: joints("0"), Gripper: "0"})
	}()
	<-started

	triggers := snapshotTriggers(h.panel)
	if triggers[panel.ControlExecute].Enabled {
		t.Fatalf("execute shown enabled while a move is in flight")
	}
	if !triggers[panel.ControlRunScript].Enabled || !triggers[panel.ControlConnect].Enabled {
		t.Fatalf("unexpected triggers %+v", triggers)
	}
	if triggers[panel.ControlConnect].Label != "Disconnect" {
		t.Fatalf("unexpected connect label %q", triggers[panel.ControlConnect].Label)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.panel.Dispatcher.RunScript(context.Background(), "print('a')"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	triggers = snapshotTriggers(h.panel)
	if !triggers[panel.ControlExecute].Enabled || triggers[panel.ControlRunScript].Enabled {
		t.Fatalf("unexpected triggers during cooldown %+v", triggers)
	}
	h.scheduler.fire()
	if !snapshotTriggers(h.panel)[panel.ControlRunScript].Enabled {
		t.Fatalf("run script still disabled after the cooldown")
	}

	state, ok := h.panel.Snapshot()[0].(events.StateEvent)
	if !ok || state.State != string(panel.StateConnected) || state.Endpoint != "localhost:9090" {
		t.Fatalf("unexpected state snapshot %+v", h.panel.Snapshot()[0])
	}
}
