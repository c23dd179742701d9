package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sharetube/watchparty/internal/controller"
	"github.com/sharetube/watchparty/internal/domain"
	connInmemory "github.com/sharetube/watchparty/internal/repository/connection/inmemory"
	locatorRedis "github.com/sharetube/watchparty/internal/repository/locator/redis"
	roomInmemory "github.com/sharetube/watchparty/internal/repository/room/inmemory"
	"github.com/sharetube/watchparty/internal/service/locator"
	"github.com/sharetube/watchparty/internal/service/room"
	signalService "github.com/sharetube/watchparty/internal/service/signal"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/eventloop"
	"github.com/sharetube/watchparty/pkg/redisclient"
	"github.com/sharetube/watchparty/pkg/ytvideodata"
)

const (
	shutdownTimeout    = 30 * time.Second
	locatorQueueFactor = 4
)

type AppConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	LogLevel       string        `json:"log_level"`
	StaticDir      string        `json:"static_dir"`
	HistoryLimit   int           `json:"history_limit"`
	EventQueueSize int           `json:"event_queue_size"`
	WSReadLimit    int64         `json:"ws_read_limit"`
	WSSendBuffer   int           `json:"ws_send_buffer"`
	WSWriteTimeout time.Duration `json:"ws_write_timeout"`
	WSPingPeriod   time.Duration `json:"ws_ping_period"`
	InstanceId     string        `json:"instance_id"`
	RedisHost      string        `json:"redis_host"`
	RedisPort      int           `json:"redis_port"`
	RedisPassword  string        `json:"-"`
	LocatorTTL     time.Duration `json:"locator_ttl"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be greater than 0")
	}
	if cfg.EventQueueSize < 1 {
		return fmt.Errorf("event queue size must be greater than 0")
	}
	if cfg.WSReadLimit < 1 {
		return fmt.Errorf("ws read limit must be greater than 0")
	}
	if cfg.WSSendBuffer < 1 {
		return fmt.Errorf("ws send buffer must be greater than 0")
	}
	if cfg.WSWriteTimeout <= 0 {
		return fmt.Errorf("ws write timeout must be greater than 0")
	}
	if cfg.WSPingPeriod <= 0 {
		return fmt.Errorf("ws ping period must be greater than 0")
	}
	if cfg.RedisHost != "" {
		if cfg.RedisPort < 1 {
			return fmt.Errorf("redis port must be greater than 0")
		}
		if cfg.LocatorTTL <= 0 {
			return fmt.Errorf("locator ttl must be greater than 0")
		}
	}
	return nil
}

func (cfg *AppConfig) locatorEnabled() bool {
	return cfg.RedisHost != ""
}

func newLogger(level string) (*slog.Logger, error) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

type app struct {
	handler   http.Handler
	loop      *eventloop.Loop
	connRepo  interface{ CloseAll() }
	publisher *locator.Publisher
	closers   []func() error
	workers   sync.WaitGroup
	logger    *slog.Logger
}

func newApp(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (*app, error) {
	a := &app{
		loop:   eventloop.New(cfg.EventQueueSize),
		logger: logger,
	}

	roomRepo := roomInmemory.NewRepo(logger, domain.WithHistoryLimit(cfg.HistoryLimit))
	connRepo := connInmemory.NewRepo(&connInmemory.Config{
		SendBuffer:   cfg.WSSendBuffer,
		WriteTimeout: cfg.WSWriteTimeout,
		PingPeriod:   cfg.WSPingPeriod,
	}, logger)
	a.connRepo = connRepo

	var (
		roomOpts       []room.Option
		controllerOpts []controller.Option
	)
	if cfg.locatorEnabled() {
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		a.closers = append(a.closers, rc.Close)

		locatorRepo := locatorRedis.NewRepo(rc, cfg.InstanceId, cfg.LocatorTTL)
		a.publisher = locator.NewPublisher(locatorRepo, cfg.EventQueueSize*locatorQueueFactor, cfg.LocatorTTL/3, logger)
		roomOpts = append(roomOpts, room.WithObserver(a.publisher))
		controllerOpts = append(controllerOpts, controller.WithRoomLocator(a.publisher))
	}

	roomService := room.NewService(roomRepo, connRepo, logger, roomOpts...)
	signalingService := signalService.NewService(connRepo, logger)
	ctrl := controller.NewController(&controller.Config{
		InstanceId: cfg.InstanceId,
		StaticDir:  cfg.StaticDir,
		ReadLimit:  cfg.WSReadLimit,
		PingPeriod: cfg.WSPingPeriod,
	}, roomService, signalingService, connRepo, a.loop, ytvideodata.NewClient(), logger, controllerOpts...)
	a.handler = ctrl.GetMux()

	return a, nil
}

// start runs the background workers until ctx is done.
func (a *app) start(ctx context.Context) {
	a.workers.Add(1)
	go func() {
		defer a.workers.Done()
		if err := a.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.ErrorContext(ctx, "event loop stopped", "error", err)
		}
	}()

	if a.publisher != nil {
		a.workers.Add(1)
		go func() {
			defer a.workers.Done()
			a.publisher.Run(ctx)
		}()
	}
}

// close waits for the workers, which must already be stopping.
func (a *app) close() {
	a.workers.Wait()
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.logger.Warn("failed to close resource", "error", err)
		}
	}
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer a.close()
	defer stopWorkers()
	a.start(workersCtx)

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: a.handler}
	// hijacked websocket connections are not tracked by Shutdown
	server.RegisterOnShutdown(a.connRepo.CloseAll)

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)
	defer serverStopCtx()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sig)
	go func() {
		select {
		case <-sig:
		case <-serverCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(serverCtx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(shutdownCtx, "graceful shutdown failed", "error", err)
			server.Close()
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr, "instance_id", cfg.InstanceId)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-serverCtx.Done()
	logger.InfoContext(ctx, "server stopped")

	return nil
}
