package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/puzpuzpuz/xsync/v3"
)

type EventType string

const (
	EventTypeToast          EventType = "toast"
	EventTypeState          EventType = "state"
	EventTypeAffordance     EventType = "affordance"
	EventTypeConsole        EventType = "console"
	EventTypeConsoleCleared EventType = "console_cleared"
	EventTypeGate           EventType = "gate"
)

type Event interface {
	GetType() EventType
}

// SessionScoped events are only delivered to the browser session they name.
type SessionScoped interface {
	GetSessionID() string
}

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelSystem  Level = "system"
)

type ToastEvent struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func (e ToastEvent) GetType() EventType {
	return EventTypeToast
}

type StateEvent struct {
	State    string `json:"state"`
	Endpoint string `json:"endpoint"`
}

func (e StateEvent) GetType() EventType {
	return EventTypeState
}

// AffordanceEvent tells the view to enable or disable one of its triggers.
type AffordanceEvent struct {
	Control string `json:"control"`
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

func (e AffordanceEvent) GetType() EventType {
	return EventTypeAffordance
}

type ConsoleEvent struct {
	Time  time.Time `json:"time"`
	Level Level     `json:"level"`
	Text  string    `json:"text"`
	Line  string    `json:"line"`
}

func (e ConsoleEvent) GetType() EventType {
	return EventTypeConsole
}

type ConsoleClearedEvent struct {
	Line string `json:"line"`
}

func (e ConsoleClearedEvent) GetType() EventType {
	return EventTypeConsoleCleared
}

type GateEvent struct {
	SessionID  string `json:"-"`
	Granted    bool   `json:"granted"`
	Message    string `json:"message"`
	ClearAfter int64  `json:"clear_after_ms,omitempty"`
}

func (e GateEvent) GetType() EventType {
	return EventTypeGate
}

func (e GateEvent) GetSessionID() string {
	return e.SessionID
}

// Envelope is the wire form of an event, both on the UI websocket and NATS.
type Envelope struct {
	Type EventType `json:"type"`
	Data Event     `json:"data"`
}

const subscriberBuffer = 100

type EventBus struct {
	subscribers *xsync.MapOf[string, chan Event]
	nc          *nats.Conn
	subject     string
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: xsync.NewMapOf[string, chan Event](),
	}
}

// WithNATS mirrors every published event to subject.<type> on nc.
func (eb *EventBus) WithNATS(nc *nats.Conn, subject string) *EventBus {
	eb.nc = nc
	eb.subject = subject
	return eb
}

// Publish never blocks; a subscriber that falls behind loses events.
func (eb *EventBus) Publish(event Event) {
	eb.subscribers.Range(func(id string, ch chan Event) bool {
		select {
		case ch <- event:
		default:
			slog.Warn("Dropping event for slow subscriber", "subscriber", id, "type", event.GetType())
		}
		return true
	})

	if eb.nc != nil {
		data, err := json.Marshal(Envelope{Type: event.GetType(), Data: event})
		if err != nil {
			slog.Warn("Error marshalling event for NATS", "error", err)
			return
		}
		if err := eb.nc.Publish(eb.subject+"."+string(event.GetType()), data); err != nil {
			slog.Warn("Error publishing event to NATS", "error", err)
		}
	}
}

func (eb *EventBus) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)
	eb.subscribers.Store(id, ch)
	return id, ch
}

// Unsubscribe stops delivery to id. The channel is left open since a
// concurrent Publish may still hold it.
func (eb *EventBus) Unsubscribe(id string) {
	eb.subscribers.Delete(id)
}

func (eb *EventBus) Subscribers() int {
	return eb.subscribers.Size()
}
