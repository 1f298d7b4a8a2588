package websocket_test

import (
	"testing"

	"github.com/USA-RedDragon/arm-panel/internal/events"
	"github.com/USA-RedDragon/arm-panel/internal/server/websocket"
	"pgregory.net/rapid"
)

func TestGateEventsOnlyReachTheirSession(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		owner := rapid.StringMatching(`[a-f0-9]{8}`).Draw(t, "owner")
		other := rapid.StringMatching(`[a-f0-9]{8}`).Draw(t, "other")
		event := events.GateEvent{SessionID: owner, Message: "Incorrect PIN. Try again."}

		unlocked := rapid.Bool().Draw(t, "unlocked")

		if !websocket.Deliverable(event, owner, unlocked) {
			t.Fatalf("gate event withheld from its own session")
		}
		if other != owner && websocket.Deliverable(event, other, unlocked) {
			t.Fatalf("gate event for %s delivered to %s", owner, other)
		}
	})
}

func TestBroadcastEventsOnlyReachUnlockedSessions(t *testing.T) {
	t.Parallel()
	for _, event := range []events.Event{
		events.ToastEvent{Level: events.LevelSuccess, Message: "Connected to rosbridge"},
		events.StateEvent{State: "connected", Endpoint: "robot:9090"},
		events.AffordanceEvent{Control: "execute", Enabled: false, Label: "Executing..."},
		events.ConsoleEvent{Level: events.LevelInfo, Text: "Executing script..."},
		events.ConsoleClearedEvent{Line: "[System] Console cleared"},
	} {
		if !websocket.Deliverable(event, "any-session", true) {
			t.Errorf("%s event was not broadcast", event.GetType())
		}
		if websocket.Deliverable(event, "any-session", false) {
			t.Errorf("%s event reached a locked session", event.GetType())
		}
	}
}
