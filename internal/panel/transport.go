package panel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/events"
)

// Transport is the bridge link the registry binds channels on.
// *rosbridge.Client satisfies it.
type Transport interface {
	CallService(ctx context.Context, service, serviceType string, args any) (json.RawMessage, error)
	Advertise(topic, messageType string) error
	Unadvertise(topic string) error
	Publish(topic string, msg any) error
	Subscribe(topic, messageType string, handler func(json.RawMessage)) error
	Unsubscribe(topic string) error
	Close() error
}

// DialFunc opens a Transport to url. onClose must be called exactly once when
// the transport goes down after a successful dial.
type DialFunc func(ctx context.Context, url string, onClose func(error)) (Transport, error)

// Notifier receives everything the view needs to render: toasts, state and
// affordance changes, console lines. *events.EventBus satisfies it.
type Notifier interface {
	Publish(event events.Event)
}

// Scheduler runs f after d. Used for the cosmetic timers so tests can fire
// them by hand.
type Scheduler func(d time.Duration, f func())

func afterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

func toast(n Notifier, level events.Level, message string) {
	n.Publish(events.ToastEvent{Level: level, Message: message})
}
