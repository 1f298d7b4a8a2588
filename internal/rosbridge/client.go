package rosbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/utils"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	writeWait               = 10 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
)

var (
	ErrClosed = errors.New("rosbridge connection closed")
)

// ServiceError is returned by CallService when the bridge answers with
// result=false. Values holds whatever the bridge sent back, usually a message.
type ServiceError struct {
	Service string
	Values  json.RawMessage
}

func (e *ServiceError) Error() string {
	if len(e.Values) == 0 {
		return fmt.Sprintf("service %s failed", e.Service)
	}
	return fmt.Sprintf("service %s failed: %s", e.Service, string(e.Values))
}

type options struct {
	handshakeTimeout time.Duration
	onClose          func(error)
}

type Option func(*options)

func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *options) {
		o.handshakeTimeout = d
	}
}

// WithCloseHandler registers fn to run exactly once when the link goes down,
// whether the bridge dropped it or Close was called.
func WithCloseHandler(fn func(error)) Option {
	return func(o *options) {
		o.onClose = fn
	}
}

type Client struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	responses chan ServiceResponse
	watcher   *utils.ChannelWatcher[ServiceResponse]
	handlers  *xsync.MapOf[string, func(json.RawMessage)]
	onClose   func(error)
	closing   atomic.Bool
	done      chan struct{}
	finish    sync.Once
}

func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	o := options{
		handshakeTimeout: defaultHandshakeTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	// gorilla only turns ctx into a read deadline for the upgrade, so the raw
	// socket is closed by hand when ctx ends mid-handshake.
	var stopClose func() bool
	dialer := websocket.Dialer{
		HandshakeTimeout: o.handshakeTimeout,
		NetDialContext: func(dialCtx context.Context, network, addr string) (net.Conn, error) {
			var d net.Dialer
			netConn, err := d.DialContext(dialCtx, network, addr)
			if err != nil {
				return nil, err
			}
			stopClose = context.AfterFunc(ctx, func() {
				_ = netConn.Close()
			})
			return netConn, nil
		},
	}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if stopClose != nil && !stopClose() && err == nil {
		_ = conn.Close()
		err = net.ErrClosed
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("failed to dial rosbridge at %s: %w", url, ctxErr)
		}
		return nil, fmt.Errorf("failed to dial rosbridge at %s: %w", url, err)
	}

	responses := make(chan ServiceResponse)
	c := &Client{
		conn:      conn,
		responses: responses,
		watcher:   utils.NewChannelWatcher(responses),
		handlers:  xsync.NewMapOf[string, func(json.RawMessage)](),
		onClose:   o.onClose,
		done:      make(chan struct{}),
	}
	go c.watcher.WatchChannel(func(resp ServiceResponse) string {
		return resp.ID
	})
	go c.readLoop()

	slog.Debug("rosbridge connected", "url", url)
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.responses)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if c.closing.Load() {
				err = ErrClosed
			}
			c.shutdown(err)
			return
		}

		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			slog.Warn("Error unmarshalling rosbridge frame", "error", err)
			continue
		}

		switch env.Op {
		case OpServiceResponse:
			var resp ServiceResponse
			if err := json.Unmarshal(msg, &resp); err != nil {
				slog.Warn("Error unmarshalling service response", "error", err)
				continue
			}
			c.responses <- resp
		case OpPublish:
			var pub Publish
			if err := json.Unmarshal(msg, &pub); err != nil {
				slog.Warn("Error unmarshalling publish", "error", err)
				continue
			}
			if handler, ok := c.handlers.Load(pub.Topic); ok {
				handler(pub.Msg)
			}
		case OpStatus:
			var status Status
			if err := json.Unmarshal(msg, &status); err != nil {
				slog.Warn("Error unmarshalling status", "error", err)
				continue
			}
			slog.Info("rosbridge status", "level", status.Level, "msg", status.Msg, "id", status.ID)
		default:
			slog.Debug("Ignoring rosbridge op", "op", env.Op)
		}
	}
}

func (c *Client) shutdown(err error) {
	c.finish.Do(func() {
		if pending := c.watcher.Pending(); pending > 0 {
			slog.Warn("rosbridge link down with calls in flight", "pending", pending, "error", err)
		}
		close(c.done)
		_ = c.conn.Close()
		if c.onClose != nil {
			c.onClose(err)
		}
	})
}

func (c *Client) write(v any) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// CallService sends a call_service op and waits for the matching
// service_response, the context to end, or the link to drop.
func (c *Client) CallService(ctx context.Context, service, serviceType string, args any) (json.RawMessage, error) {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal service args: %w", err)
	}

	id := OpCallService + ":" + uuid.NewString()
	responseChan := make(chan ServiceResponse, 1)
	c.watcher.Subscribe(id, func(resp ServiceResponse) {
		responseChan <- resp
	})
	defer c.watcher.Unsubscribe(id)

	err = c.write(CallService{
		Op:      OpCallService,
		ID:      id,
		Service: service,
		Type:    serviceType,
		Args:    rawArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send service call: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	case resp := <-responseChan:
		if !resp.Result {
			return nil, &ServiceError{Service: service, Values: resp.Values}
		}
		return resp.Values, nil
	}
}

func (c *Client) Advertise(topic, messageType string) error {
	return c.write(Advertise{
		Op:    OpAdvertise,
		ID:    OpAdvertise + ":" + topic,
		Topic: topic,
		Type:  messageType,
	})
}

func (c *Client) Unadvertise(topic string) error {
	return c.write(Unadvertise{
		Op:    OpUnadvertise,
		ID:    OpAdvertise + ":" + topic,
		Topic: topic,
	})
}

func (c *Client) Publish(topic string, msg any) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return c.write(Publish{
		Op:    OpPublish,
		Topic: topic,
		Msg:   raw,
	})
}

// Subscribe routes every message published on topic to handler. Handlers run
// on the read goroutine and must not block.
func (c *Client) Subscribe(topic, messageType string, handler func(json.RawMessage)) error {
	c.handlers.Store(topic, handler)
	err := c.write(Subscribe{
		Op:    OpSubscribe,
		ID:    OpSubscribe + ":" + topic,
		Topic: topic,
		Type:  messageType,
	})
	if err != nil {
		c.handlers.Delete(topic)
		return err
	}
	return nil
}

func (c *Client) Unsubscribe(topic string) error {
	c.handlers.Delete(topic)
	return c.write(Unsubscribe{
		Op:    OpUnsubscribe,
		ID:    OpSubscribe + ":" + topic,
		Topic: topic,
	})
}

// Close tears the link down. Safe to call more than once.
func (c *Client) Close() error {
	select {
	case <-c.done:
		return nil
	default:
	}
	c.closing.Store(true)

	c.writeMu.Lock()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	if err != nil && !errors.Is(err, ErrClosed) {
		slog.Debug("rosbridge close", "error", err)
	}
	return nil
}
