package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-restobook/config"
	"go-restobook/database"
	"go-restobook/database/memory"
	"go-restobook/events"
	"go-restobook/logger"
	"go-restobook/routes"
	"go-restobook/services"

	"github.com/gin-gonic/gin"
)

// store is what main needs beyond the service contract: a way to close it.
type store interface {
	services.Store
	Close(ctx context.Context) error
}

var (
	_ store = (*database.Store)(nil)
	_ store = (*memory.Store)(nil)
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Get().Error("opening store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	hub := events.NewHub(cfg.CORSOrigins)
	publishers := events.Multi{hub}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			slog.Warn("rabbitmq unavailable, events go to websocket clients only", "error", err)
		} else {
			defer amqpPublisher.Close()
			publishers = append(publishers, amqpPublisher)
			slog.Info("publishing events to rabbitmq", "exchange", cfg.AMQPExchange)
		}
	}

	svc := services.New(st, publishers)
	if cfg.ReconcileInterval > 0 {
		svc.Reconciler.Start(ctx, cfg.ReconcileInterval)
		slog.Info("scheduled reconciliation", "interval", cfg.ReconcileInterval)
	}

	router := routes.NewRouter(svc, st, hub, routes.Options{
		CORSOrigins:    cfg.CORSOrigins,
		Metrics:        cfg.MetricsEnabled,
		RequestTimeout: cfg.RequestTimeout,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("listening", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		slog.Error("closing store", "error", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		slog.Warn("using in-memory store; data is lost on exit")
		return memory.NewStore(), nil
	case config.DriverMongo:
		timeout := cfg.Mongo.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		client, err := database.Connect(connectCtx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		st := database.NewStore(client, cfg.Mongo.Name)
		if err := st.EnsureIndexes(connectCtx); err != nil {
			_ = st.Close(context.Background())
			return nil, err
		}
		return st, nil
	}
	return nil, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
}
