package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/USA-RedDragon/arm-panel/internal/events"
	"github.com/USA-RedDragon/arm-panel/internal/metrics"
	"github.com/USA-RedDragon/arm-panel/internal/panel"
	"github.com/USA-RedDragon/arm-panel/internal/websocket"
	"github.com/gin-gonic/gin"
	gorillaWebsocket "github.com/gorilla/websocket"
)

// EventsWebsocket streams panel events to the browser. Session-scoped events
// only reach the session they name; everything else waits for the gate.
type EventsWebsocket struct {
	bus     *events.EventBus
	panel   *panel.Panel
	metrics *metrics.Metrics
}

func CreateEventsWebsocket(bus *events.EventBus, p *panel.Panel, metrics *metrics.Metrics) *EventsWebsocket {
	return &EventsWebsocket{
		bus:     bus,
		panel:   p,
		metrics: metrics,
	}
}

func writeEvent(w websocket.Writer, event events.Event) {
	data, err := json.Marshal(events.Envelope{Type: event.GetType(), Data: event})
	if err != nil {
		slog.Warn("Error marshalling event", "type", event.GetType(), "error", err)
		return
	}
	w.WriteMessage(websocket.Message{
		Type: gorillaWebsocket.TextMessage,
		Data: data,
	})
}

// Deliverable reports whether event may be sent to sessionID. A session that
// has not passed the gate only hears its own gate events.
func Deliverable(event events.Event, sessionID string, unlocked bool) bool {
	scoped, ok := event.(events.SessionScoped)
	if !ok {
		return unlocked
	}
	return scoped.GetSessionID() == sessionID
}

func (e *EventsWebsocket) OnMessage(_ context.Context, _ *gin.Context, _ websocket.Writer, msg []byte, msgType int) {
	slog.Debug("Ignoring UI websocket message", "message", string(msg), "type", msgType)
}

func (e *EventsWebsocket) OnConnect(ctx context.Context, c *gin.Context, w websocket.Writer) {
	sessionID := c.GetString("session_id")
	id, ch := e.bus.Subscribe()
	c.Set("events_subscriber", id)
	e.countConnections()
	slog.Debug("UI websocket connected", "subscriber", id)

	unlocked, err := e.panel.Gate.IsAuthenticated(ctx, sessionID)
	if err != nil {
		slog.Error("Error reading session", "error", err)
	}
	if unlocked {
		e.writeSnapshot(w)
	}
	if msg := e.panel.Gate.LockError(sessionID); msg != "" {
		writeEvent(w, events.GateEvent{SessionID: sessionID, Message: msg})
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-ch:
				if !Deliverable(event, sessionID, unlocked) {
					continue
				}
				writeEvent(w, event)
				if gate, ok := event.(events.GateEvent); ok && gate.Granted && !unlocked {
					unlocked = true
					e.writeSnapshot(w)
				}
			}
		}
	}()
}

// countConnections mirrors the bus subscriber count, which only UI sockets add to.
func (e *EventsWebsocket) countConnections() {
	if e.metrics != nil {
		e.metrics.SetUIConnections(float64(e.bus.Subscribers()))
	}
}

func (e *EventsWebsocket) writeSnapshot(w websocket.Writer) {
	for _, event := range e.panel.Snapshot() {
		writeEvent(w, event)
	}
}

func (e *EventsWebsocket) OnDisconnect(_ context.Context, c *gin.Context) {
	if id := c.GetString("events_subscriber"); id != "" {
		e.bus.Unsubscribe(id)
	}
	e.countConnections()
	slog.Debug("UI websocket disconnected")
}
