package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/todos/pkg/app"
	"github.com/ghuser/todos/pkg/cache"
	"github.com/ghuser/todos/pkg/config"
	"github.com/ghuser/todos/pkg/database"
	"github.com/ghuser/todos/pkg/events"
	"github.com/ghuser/todos/pkg/logger"
	"github.com/ghuser/todos/pkg/telemetry"
	appsvcs "github.com/ghuser/todos/services/todo/application/services"
	"github.com/ghuser/todos/services/todo/application/subscribers"
	todoEvents "github.com/ghuser/todos/services/todo/domain/events"
	"github.com/ghuser/todos/services/todo/infrastructure/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Only the postgres store publishes outbox events; the redis and memory
	// stores notify watchers directly.
	if cfg.TodoStore != config.StorePostgres {
		log.Info("no outbox for this todo store, worker idle", "todo_store", cfg.TodoStore)
		return
	}

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close() //nolint:errcheck
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(pool.DB(), cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	appConfig := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}

	subCtx, cancelSubs := context.WithCancel(ctx)
	defer cancelSubs()

	if err := registerSubscribers(subCtx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancelSubs()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	var todoCache appsvcs.TodoCache
	if a.Config.TodoCacheEnabled {
		todoCache = cache.NewTodoCache(a.Redis)
	}
	projector := subscribers.NewProjector(
		todoCache,
		notify.NewRedisNotifier(a.Redis.Client(), a.Logger),
		a.Logger,
	)

	for _, topic := range todoEvents.Topics {
		errCh, err := a.EventBus.Subscribe(ctx, topic, projector.Handler(topic))
		if err != nil {
			return err
		}

		// Drain subscriber errors in background so the channel never blocks.
		go func() {
			for err := range errCh {
				if events.IsPermanent(err) {
					a.Logger.ErrorContext(ctx, "todo event dropped", "topic", topic, "error", err)
					telemetry.CaptureError(ctx, err, map[string]string{"event.topic": topic})
					continue
				}
				a.Logger.WarnContext(ctx, "todo event will be redelivered", "topic", topic, "error", err)
			}
		}()
	}

	a.Logger.Info("event subscribers registered", "topics", todoEvents.Topics)
	return nil
}
