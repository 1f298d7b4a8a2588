package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/audit"
	"github.com/USA-RedDragon/arm-panel/internal/config"
	"github.com/USA-RedDragon/arm-panel/internal/db"
	"github.com/USA-RedDragon/arm-panel/internal/events"
	"github.com/USA-RedDragon/arm-panel/internal/library"
	"github.com/USA-RedDragon/arm-panel/internal/metrics"
	"github.com/USA-RedDragon/arm-panel/internal/panel"
	"github.com/USA-RedDragon/arm-panel/internal/rosbridge"
	"github.com/USA-RedDragon/arm-panel/internal/server"
	"github.com/USA-RedDragon/arm-panel/internal/session"
	"github.com/USA-RedDragon/arm-panel/internal/storage"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const sessionSweepInterval = 5 * time.Minute

func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "arm-panel",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(cmd)
	return cmd
}

//nolint:gocyclo
func run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	config, err := config.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.SlogLevel()})))
	slog.Info("arm-panel", "version", cmd.Annotations["version"], "commit", cmd.Annotations["commit"])

	metrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	var sessions session.Store
	var redisClient *redis.Client
	if config.Redis.Enabled {
		redisClient = connectRedis(config)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		sessions = session.NewRedisStore(redisClient, config.Session.Key, config.Session.TTL)
		slog.Info("Redis connection established")
	} else {
		memory := session.NewMemoryStore(config.Session.Key, config.Session.TTL)
		go sweepSessions(ctx, memory)
		sessions = memory
	}

	bus := events.NewEventBus()
	var nc *nats.Conn
	if config.NATS.Enabled {
		nc, err = nats.Connect(config.NATS.URL, nats.Name("arm-panel"))
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		bus.WithNATS(nc, config.NATS.Subject)
		slog.Info("NATS connection established", "subject", config.NATS.Subject)
	}

	var recorder panel.Recorder
	var database *gorm.DB
	var queue *audit.Queue
	if config.Audit.Enabled {
		database, err = db.MakeDB(config)
		if err != nil {
			return fmt.Errorf("failed to make database: %w", err)
		}
		slog.Info("Database connection established")
		queue = audit.NewQueue(database, config.Audit.Workers, metrics)
		queue.Start()
		recorder = queue
	}

	root, err := storage.NewStorage(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	lib, err := library.New(root)
	if err != nil {
		_ = root.Close()
		return fmt.Errorf("failed to open script library: %w", err)
	}

	p := panel.New(config, panel.Options{
		Dial:     dialBridge(config),
		Sessions: sessions,
		Notifier: bus,
		Recorder: recorder,
		Metrics:  metrics,
	})
	p.Console.OnClear(lib.ArchiveHook(ctx))

	slog.Info("Starting HTTP server")
	server := server.NewServer(config, server.Dependencies{
		Panel:   p,
		Events:  bus,
		Metrics: metrics,
		Library: lib,
		DB:      database,
	})
	err = server.Start()
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	stop := func(_ os.Signal) {
		slog.Info("Shutting down")

		errGrp := errgroup.Group{}

		errGrp.Go(func() error {
			return server.Stop()
		})
		errGrp.Go(func() error {
			p.Connection.Disconnect()
			return nil
		})

		err := errGrp.Wait()
		if err != nil {
			slog.Error("Shutdown error", "error", err.Error())
		}

		if queue != nil {
			queue.Stop()
		}
		if nc != nil {
			if err := nc.Drain(); err != nil {
				slog.Error("Error draining NATS", "error", err)
			}
		}
		if err := lib.Close(); err != nil {
			slog.Error("Error closing script library", "error", err)
		}
		if err := root.Close(); err != nil {
			slog.Error("Error closing storage", "error", err)
		}
		cancel()
		slog.Info("Shutdown complete")
	}

	if cmd.Annotations["version"] == "testing" {
		doneChannel := make(chan struct{})
		go func() {
			slog.Info("Sleeping for 5 seconds")
			time.Sleep(5 * time.Second)
			slog.Info("Sending SIGTERM")
			stop(syscall.SIGTERM)
			doneChannel <- struct{}{}
		}()
		<-doneChannel
	} else {
		shutdown.AddWithParam(stop)
		shutdown.Listen(syscall.SIGINT, syscall.SIGKILL, syscall.SIGTERM, syscall.SIGQUIT)
	}

	return nil
}

// dialBridge adapts the rosbridge client to the panel's transport dialer.
func dialBridge(config *config.Config) panel.DialFunc {
	return func(ctx context.Context, url string, onClose func(error)) (panel.Transport, error) {
		client, err := rosbridge.Dial(ctx, url,
			rosbridge.WithHandshakeTimeout(config.Bridge.HandshakeTimeout),
			rosbridge.WithCloseHandler(onClose),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func sweepSessions(ctx context.Context, store *session.MemoryStore) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				slog.Debug("Expired sessions", "count", n)
			}
		}
	}
}

func connectRedis(config *config.Config) *redis.Client {
	if config.Redis.Sentinel.Enabled {
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       config.Redis.Sentinel.MasterName,
			SentinelAddrs:    config.Redis.Sentinel.Addresses,
			SentinelPassword: config.Redis.Sentinel.Password,
			Password:         config.Redis.Password,
			Username:         config.Redis.Username,
			DB:               config.Redis.Database,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:     config.Redis.Address,
		Username: config.Redis.Username,
		Password: config.Redis.Password,
		DB:       config.Redis.Database,
	})
}
