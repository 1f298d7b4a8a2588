package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/USA-RedDragon/arm-panel/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const bufferSize = 1024

type Message struct {
	Type int
	Data []byte
}

// Writer queues frames for the connection's write loop.
type Writer interface {
	WriteMessage(msg Message)
	Error(reason string)
}

type wsWriter struct {
	writer    chan Message
	error     chan string
	done      chan struct{}
	errorOnce sync.Once
}

func (w *wsWriter) WriteMessage(msg Message) {
	select {
	case w.writer <- msg:
	case <-w.done:
	}
}

func (w *wsWriter) Error(reason string) {
	w.errorOnce.Do(func() {
		select {
		case w.error <- reason:
		case <-w.done:
		}
	})
}

type Websocket interface {
	OnMessage(ctx context.Context, c *gin.Context, w Writer, msg []byte, t int)
	OnConnect(ctx context.Context, c *gin.Context, w Writer)
	OnDisconnect(ctx context.Context, c *gin.Context)
}

type WSHandler struct {
	wsUpgrader websocket.Upgrader
	handler    Websocket
}

func checkOrigin(hosts []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(hosts) == 0 {
			return true
		}
		origin = strings.ToLower(origin)
		for _, host := range hosts {
			host = strings.ToLower(host)
			if strings.HasSuffix(host, ":443") && strings.HasPrefix(origin, "https://") {
				host = strings.TrimSuffix(host, ":443")
			}
			if strings.HasSuffix(host, ":80") && strings.HasPrefix(origin, "http://") {
				host = strings.TrimSuffix(host, ":80")
			}
			if strings.Contains(origin, host) {
				return true
			}
		}
		return false
	}
}

func CreateHandler(ws Websocket, config *config.Config) gin.HandlerFunc {
	handler := &WSHandler{
		wsUpgrader: websocket.Upgrader{
			ReadBufferSize:  bufferSize,
			WriteBufferSize: bufferSize,
			Error: func(_ http.ResponseWriter, _ *http.Request, status int, reason error) {
				slog.Warn("Websocket upgrade rejected", "status", status, "error", reason)
			},
			CheckOrigin:       checkOrigin(config.HTTP.CORSHosts),
			EnableCompression: true,
		},
		handler: ws,
	}

	return func(c *gin.Context) {
		conn, err := handler.wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("Failed to set websocket upgrade", "error", err)
			c.Abort()
			return
		}

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer func() {
			cancel()
			handler.handler.OnDisconnect(ctx, c)
			_ = conn.Close()
		}()

		handler.handle(ctx, c, conn)
	}
}

func (h *WSHandler) handle(ctx context.Context, c *gin.Context, conn *websocket.Conn) {
	writer := &wsWriter{
		writer: make(chan Message, bufferSize),
		error:  make(chan string),
		done:   make(chan struct{}),
	}
	defer close(writer.done)

	h.handler.OnConnect(ctx, c, writer)

	go func() {
		for {
			t, msg, err := conn.ReadMessage()
			if err != nil {
				writer.Error("read failed")
				return
			}
			switch {
			case t == websocket.PingMessage:
				writer.WriteMessage(Message{
					Type: websocket.PongMessage,
				})
			case strings.EqualFold(string(msg), "ping"):
				writer.WriteMessage(Message{
					Type: websocket.TextMessage,
					Data: []byte("PONG"),
				})
			default:
				h.handler.OnMessage(ctx, c, writer, msg, t)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-writer.error:
			slog.Debug("Websocket closing", "reason", reason)
			return
		case msg := <-writer.writer:
			if err := conn.WriteMessage(msg.Type, msg.Data); err != nil {
				return
			}
		}
	}
}
