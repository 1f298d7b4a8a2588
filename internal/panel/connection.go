package panel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/USA-RedDragon/arm-panel/internal/events"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

//nolint:golint,gochecknoglobals
var allStates = []string{string(StateDisconnected), string(StateConnecting), string(StateConnected)}

const websocketScheme = "ws://"

const ControlConnect = "connect"

// Status is a read-only snapshot of the connection.
type Status struct {
	State    State  `json:"state"`
	Endpoint string `json:"endpoint"`
}

// Connection owns the bridge transport and the channels bound on it. Every
// transition happens under mu; epoch increments whenever a transport is
// superseded so its late events are ignored.
type Connection struct {
	mu         sync.Mutex
	state      State
	endpoint   string
	transport  Transport
	channels   *ChannelSet
	epoch      uint64
	cancelDial context.CancelFunc

	dial     DialFunc
	registry *Registry
	notifier Notifier
	metrics  Metrics
}

func NewConnection(dial DialFunc, registry *Registry, notifier Notifier, metrics Metrics) *Connection {
	c := &Connection{
		state:    StateDisconnected,
		dial:     dial,
		registry: registry,
		notifier: notifier,
		metrics:  metrics,
	}
	c.metrics.SetBridgeState(string(c.state), allStates...)
	return c
}

func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connection) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{State: c.state, Endpoint: c.endpoint}
}

// Channels returns the bound channels, or ErrNotConnected outside Connected.
func (c *Connection) Channels() (*ChannelSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected {
		return nil, ErrNotConnected
	}
	return c.channels, nil
}

// Connect dials ws://endpoint and blocks until the handshake settles.
func (c *Connection) Connect(ctx context.Context, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		toast(c.notifier, events.LevelError, "Please enter rosbridge URL")
		return ErrEmptyEndpoint
	}

	c.mu.Lock()
	if c.state != StateDisconnected {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot connect while %s", ErrInvalidState, state)
	}
	c.epoch++
	epoch := c.epoch
	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.cancelDial = cancel
	c.endpoint = endpoint
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	transport, err := c.dial(dialCtx, websocketScheme+endpoint, func(err error) {
		c.handleClose(epoch, err)
	})
	if err != nil {
		c.metrics.IncrementBridgeConnects("error")
		c.mu.Lock()
		current := c.epoch == epoch
		if current {
			c.epoch++
			c.cancelDial = nil
			c.setStateLocked(StateDisconnected)
			toast(c.notifier, events.LevelError, "Connection error")
		}
		c.mu.Unlock()
		if current {
			slog.Error("Error connecting to rosbridge", "endpoint", endpoint, "error", err)
		} else {
			slog.Debug("rosbridge handshake abandoned", "endpoint", endpoint, "error", err)
		}
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	channels, bindErr := c.registry.Bind(transport)

	c.mu.Lock()
	if c.epoch != epoch || c.state != StateConnecting {
		c.mu.Unlock()
		c.metrics.IncrementBridgeConnects("superseded")
		if channels != nil {
			c.registry.Unbind(channels)
		}
		_ = transport.Close()
		return fmt.Errorf("%w: connection to %s was superseded", ErrTransport, endpoint)
	}
	if bindErr != nil {
		c.epoch++
		c.cancelDial = nil
		c.setStateLocked(StateDisconnected)
		toast(c.notifier, events.LevelError, "Connection error")
		c.mu.Unlock()
		c.metrics.IncrementBridgeConnects("error")
		slog.Error("Error binding rosbridge channels", "endpoint", endpoint, "error", bindErr)
		_ = transport.Close()
		return fmt.Errorf("%w: %w", ErrTransport, bindErr)
	}
	c.transport = transport
	c.channels = channels
	c.cancelDial = nil
	c.setStateLocked(StateConnected)
	toast(c.notifier, events.LevelSuccess, "Connected to rosbridge")
	c.mu.Unlock()

	c.metrics.IncrementBridgeConnects("success")
	slog.Info("Connected to rosbridge", "endpoint", endpoint)
	return nil
}

// handleClose runs when the transport of the given epoch goes down on its own.
func (c *Connection) handleClose(epoch uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch || c.state == StateDisconnected {
		return
	}

	previous := c.state
	c.epoch++
	c.channels.release()
	c.channels = nil
	c.transport = nil
	c.setStateLocked(StateDisconnected)

	if previous == StateConnected {
		slog.Warn("rosbridge connection closed", "endpoint", c.endpoint, "error", err)
		toast(c.notifier, events.LevelError, "Connection closed")
	} else {
		slog.Warn("rosbridge connection failed during handshake", "endpoint", c.endpoint, "error", err)
		toast(c.notifier, events.LevelError, "Connection error")
	}
}

// Disconnect is valid from any state and never fails.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	c.epoch++
	cancel := c.cancelDial
	transport := c.transport
	channels := c.channels
	c.cancelDial = nil
	c.transport = nil
	c.channels = nil
	released := channels.release()
	if c.state != StateDisconnected {
		c.setStateLocked(StateDisconnected)
	}
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if released {
		c.registry.cleanup(channels)
	}
	if transport != nil {
		if err := transport.Close(); err != nil {
			slog.Debug("Error closing rosbridge transport", "error", err)
		}
	}
}

func (c *Connection) setStateLocked(state State) {
	c.state = state
	c.metrics.SetBridgeState(string(state), allStates...)
	c.notifier.Publish(events.StateEvent{State: string(state), Endpoint: c.endpoint})
	c.notifier.Publish(connectAffordance(state))
}

func connectAffordance(state State) events.AffordanceEvent {
	switch state {
	case StateConnecting:
		return events.AffordanceEvent{Control: ControlConnect, Enabled: false, Label: "..."}
	case StateConnected:
		return events.AffordanceEvent{Control: ControlConnect, Enabled: true, Label: "Disconnect"}
	default:
		return events.AffordanceEvent{Control: ControlConnect, Enabled: true, Label: "Connect"}
	}
}
