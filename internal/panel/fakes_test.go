package panel_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/config"
	"github.com/USA-RedDragon/arm-panel/internal/events"
	"github.com/USA-RedDragon/arm-panel/internal/panel"
)

var errRemoteHangup = errors.New("remote hung up")

type serviceCall struct {
	Service string
	Type    string
	Args    json.RawMessage
}

type publishedMessage struct {
	Topic string
	Msg   json.RawMessage
}

type fakeTransport struct {
	mu          sync.Mutex
	calls       []serviceCall
	published   []publishedMessage
	advertised  map[string]string
	subscribers map[string]func(json.RawMessage)
	closed      bool
	onClose     func(error)
	closeOnce   sync.Once

	// respond answers CallService. nil means success with an empty payload.
	respond func(ctx context.Context, service string) (json.RawMessage, error)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		advertised:  map[string]string{},
		subscribers: map[string]func(json.RawMessage){},
	}
}

func (f *fakeTransport) CallService(ctx context.Context, service, serviceType string, args any) (json.RawMessage, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, serviceCall{Service: service, Type: serviceType, Args: raw})
	respond := f.respond
	f.mu.Unlock()
	if respond == nil {
		return json.RawMessage(`{}`), nil
	}
	return respond(ctx, service)
}

func (f *fakeTransport) Advertise(topic, messageType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advertised[topic] = messageType
	return nil
}

func (f *fakeTransport) Unadvertise(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.advertised, topic)
	return nil
}

func (f *fakeTransport) Publish(topic string, msg any) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("transport closed")
	}
	f.published = append(f.published, publishedMessage{Topic: topic, Msg: raw})
	return nil
}

func (f *fakeTransport) Subscribe(topic, _ string, handler func(json.RawMessage)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers[topic] = handler
	return nil
}

func (f *fakeTransport) Unsubscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subscribers, topic)
	return nil
}

// Close mirrors rosbridge.Client: the close handler runs once.
func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.hangup(nil)
	return nil
}

func (f *fakeTransport) hangup(err error) {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		onClose := f.onClose
		f.mu.Unlock()
		if onClose != nil {
			onClose(err)
		}
	})
}

// deliver pushes a message as if the bridge published it on topic.
func (f *fakeTransport) deliver(topic string, msg any) {
	raw, _ := json.Marshal(msg)
	f.mu.Lock()
	handler := f.subscribers[topic]
	f.mu.Unlock()
	if handler != nil {
		handler(raw)
	}
}

func (f *fakeTransport) publishedOn(topic string) []json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []json.RawMessage
	for _, p := range f.published {
		if p.Topic == topic {
			out = append(out, p.Msg)
		}
	}
	return out
}

func (f *fakeTransport) serviceCalls() []serviceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]serviceCall(nil), f.calls...)
}

func (f *fakeTransport) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls) + len(f.published)
}

type fakeDialer struct {
	mu        sync.Mutex
	urls      []string
	transport *fakeTransport
	err       error
	// hold, when set, blocks the handshake until the context ends or it is closed.
	hold chan struct{}
}

func (d *fakeDialer) dial(ctx context.Context, url string, onClose func(error)) (panel.Transport, error) {
	d.mu.Lock()
	d.urls = append(d.urls, url)
	hold := d.hold
	err := d.err
	d.mu.Unlock()

	if hold != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-hold:
		}
	}
	if err != nil {
		return nil, err
	}

	t := newFakeTransport()
	t.onClose = onClose
	d.mu.Lock()
	d.transport = t
	d.mu.Unlock()
	return t, nil
}

func (d *fakeDialer) current() *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transport
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (n *recordingNotifier) Publish(event events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) toasts() []events.ToastEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []events.ToastEvent
	for _, e := range n.events {
		if toast, ok := e.(events.ToastEvent); ok {
			out = append(out, toast)
		}
	}
	return out
}

func (n *recordingNotifier) hasToast(message string) bool {
	for _, toast := range n.toasts() {
		if toast.Message == message {
			return true
		}
	}
	return false
}

func (n *recordingNotifier) affordances(control string) []events.AffordanceEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []events.AffordanceEvent
	for _, e := range n.events {
		if a, ok := e.(events.AffordanceEvent); ok && a.Control == control {
			out = append(out, a)
		}
	}
	return out
}

func (n *recordingNotifier) gateEvents() []events.GateEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []events.GateEvent
	for _, e := range n.events {
		if g, ok := e.(events.GateEvent); ok {
			out = append(out, g)
		}
	}
	return out
}

type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (s *manualScheduler) schedule(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, f)
	s.delays = append(s.delays, d)
}

func (s *manualScheduler) fire() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

type memorySessions struct {
	mu   sync.Mutex
	auth map[string]bool
}

func (m *memorySessions) IsAuthenticated(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auth[id], nil
}

func (m *memorySessions) SetAuthenticated(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.auth == nil {
		m.auth = map[string]bool{}
	}
	m.auth[id] = true
	return nil
}

type recordedCommand struct {
	Kind    panel.Kind
	Outcome string
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []recordedCommand
}

func (r *fakeRecorder) Record(kind panel.Kind, _ any, outcome string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, recordedCommand{Kind: kind, Outcome: outcome})
}

func testConfig() *config.Config {
	return &config.Config{
		Session: config.Session{
			Passcode: "1234",
			Key:      config.DefaultSessionKey,
		},
		Bridge: config.Bridge{
			Velocity:     config.DefaultBridgeVelocity,
			Acceleration: config.DefaultBridgeAcceleration,
			Topics: config.Topics{
				MoveJointService:  config.DefaultMoveJointService,
				MoveJointType:     config.DefaultMoveJointType,
				GripperTopic:      config.DefaultGripperTopic,
				GripperType:       config.DefaultGripperType,
				ScriptTopic:       config.DefaultScriptTopic,
				ScriptType:        config.DefaultScriptType,
				ScriptResultTopic: config.DefaultScriptResultTopic,
				ScriptResultType:  config.DefaultScriptResultType,
			},
		},
		Console: config.Console{MaxEntries: config.DefaultConsoleMaxEntries},
	}
}

type harness struct {
	panel     *panel.Panel
	dialer    *fakeDialer
	notifier  *recordingNotifier
	scheduler *manualScheduler
	sessions  *memorySessions
	recorder  *fakeRecorder
}

// testingT is the part of *testing.T and *rapid.T the helpers need.
type testingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newHarness(t testingT) *harness {
	t.Helper()
	h := &harness{
		dialer:    &fakeDialer{},
		notifier:  &recordingNotifier{},
		scheduler: &manualScheduler{},
		sessions:  &memorySessions{},
		recorder:  &fakeRecorder{},
	}
	h.panel = panel.New(testConfig(), panel.Options{
		Dial:      h.dialer.dial,
		Sessions:  h.sessions,
		Notifier:  h.notifier,
		Recorder:  h.recorder,
		Scheduler: h.scheduler.schedule,
	})
	return h
}

func (h *harness) connect(t testingT) *fakeTransport {
	t.Helper()
	if err := h.panel.Connection.Connect(context.Background(), "localhost:9090"); err != nil {
		t.Fatalf("unexpected connect error: %v", err)
	}
	return h.dialer.current()
}

func joints(values ...string) [6]string {
	var out [6]string
	copy(out[:], values)
	return out
}
