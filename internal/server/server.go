package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/config"
	"github.com/USA-RedDragon/arm-panel/internal/events"
	"github.com/USA-RedDragon/arm-panel/internal/library"
	"github.com/USA-RedDragon/arm-panel/internal/metrics"
	"github.com/USA-RedDragon/arm-panel/internal/panel"
	websocketControllers "github.com/USA-RedDragon/arm-panel/internal/server/websocket"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Dependencies are the long-lived services the handlers reach through the
// gin context. Library and DB may be nil.
type Dependencies struct {
	Panel   *panel.Panel
	Events  *events.EventBus
	Metrics *metrics.Metrics
	Library *library.Library
	DB      *gorm.DB
}

// listener is one address the server answers on.
type listener struct {
	name    string
	network string
	server  *http.Server
}

type Server struct {
	listeners []listener
	stopped   atomic.Bool
	handler   http.Handler
}

const (
	defTimeout  = 120 * time.Second
	stopTimeout = 240 * time.Second
)

type Router struct {
	*gin.Engine
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if strings.HasSuffix(req.URL.Path, "/") {
		req.URL.Path = filepath.Clean(req.URL.Path)
	}
	r.Engine.ServeHTTP(w, req)
}

func newHTTPServer(host string, port uint16, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(host, strconv.Itoa(int(port))),
		ReadHeaderTimeout: defTimeout,
		WriteTimeout:      defTimeout,
		Handler:           handler,
	}
}

func NewServer(config *config.Config, deps Dependencies) *Server {
	gin.SetMode(gin.ReleaseMode)
	if config.HTTP.PProf.Enabled {
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	if config.HTTP.PProf.Enabled {
		pprof.Register(r)
	}

	eventsWebsocket := websocketControllers.CreateEventsWebsocket(deps.Events, deps.Panel, deps.Metrics)
	applyMiddleware(r, config, "api", deps)
	applyRoutes(r, config, deps, eventsWebsocket)
	router := &Router{Engine: r}

	s := &Server{
		handler: router,
		listeners: []listener{
			{"HTTP IPv4", "tcp4", newHTTPServer(config.HTTP.IPV4Host, config.HTTP.Port, router)},
			{"HTTP IPv6", "tcp6", newHTTPServer(config.HTTP.IPV6Host, config.HTTP.Port, router)},
		},
	}

	if config.HTTP.Metrics.Enabled {
		metricsRouter := gin.New()
		applyMiddleware(metricsRouter, config, "metrics", deps)
		metricsRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))
		s.listeners = append(s.listeners,
			listener{"Metrics IPv4", "tcp4", newHTTPServer(config.HTTP.Metrics.IPV4Host, config.HTTP.Metrics.Port, metricsRouter)},
			listener{"Metrics IPv6", "tcp6", newHTTPServer(config.HTTP.Metrics.IPV6Host, config.HTTP.Metrics.Port, metricsRouter)},
		)
	}
	return s
}

// Handler is the API router, for serving without the listeners.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds every listener before serving any of them, so a bad address
// fails without leaving the others running.
func (s *Server) Start() error {
	bound := make([]net.Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ln, err := net.Listen(l.network, l.server.Addr)
		if err != nil {
			for _, b := range bound {
				_ = b.Close()
			}
			return fmt.Errorf("failed to listen on %s: %w", l.server.Addr, err)
		}
		bound = append(bound, ln)
	}

	for i, l := range s.listeners {
		go func(l listener, ln net.Listener) {
			if err := l.server.Serve(ln); err != nil && !s.stopped.Load() {
				slog.Error(l.name+" server error", "error", err.Error())
			}
		}(l, bound[i])
		slog.Info(l.name+" server started", "address", l.server.Addr)
	}
	return nil
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.stopped.Store(true)

	errGrp := errgroup.Group{}
	for _, l := range s.listeners {
		errGrp.Go(func() error {
			return l.server.Shutdown(ctx)
		})
	}
	return errGrp.Wait()
}
