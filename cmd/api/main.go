package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/todos/docs/swagger"
	"github.com/ghuser/todos/pkg/app"
	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/pkg/cache"
	"github.com/ghuser/todos/pkg/config"
	"github.com/ghuser/todos/pkg/database"
	"github.com/ghuser/todos/pkg/events"
	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
	"github.com/ghuser/todos/pkg/telemetry"
	todoApi "github.com/ghuser/todos/services/todo/application/api"
	userApi "github.com/ghuser/todos/services/user/application/api"
)

// @title					Todos API
// @version				1.0
// @description			Personal todo lists behind session authentication.
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
// @securityDefinitions.apikey	SessionCookie
// @in							header
// @name						Cookie
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

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional; log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	appConfig := &app.Application{Config: cfg, Logger: log}
	checks := httpx.HealthChecks{Store: cfg.TodoStore}

	// Postgres and the outbox are only needed by the postgres store.
	if cfg.TodoStore == config.StorePostgres {
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
		}
		defer pool.Close() //nolint:errcheck
		log.Info("database pool connected")

		eventBus, err := events.NewEventBusWithForwarder(pool.DB(), cfg, log)
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer eventBus.Close() //nolint:errcheck

		if err := eventBus.StartForwarder(ctx); err != nil {
			log.Error("failed to start event forwarder", "error", err)
			os.Exit(1) //nolint:gocritic
		}

		appConfig.Db, appConfig.EventBus = pool, eventBus
		checks.Database, checks.EventBus = pool, eventBus
	}

	// Redis carries sessions, the todo cache and change notifications. Only the
	// memory store may run without it, in which case sessions live in the cookie.
	redisClient, err := cache.NewRedisClient(cfg)
	switch {
	case err == nil:
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
		appConfig.Redis = redisClient
		checks.Redis = redisClient
	case cfg.TodoStore == config.StoreMemory:
		log.Warn("redis unavailable, using cookie sessions and no change stream", "error", err)
	default:
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}

	appConfig.SessionStore = newSessionStore(cfg, appConfig.Redis)
	log.Info("session store initialized", "backend", sessionBackend(appConfig.Redis))

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RequestsPerMinute:  cfg.RequestsPerMinute,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, appConfig)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "todo_store", cfg.TodoStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// newSessionStore prefers server-side sessions in Redis and falls back to an
// encrypted cookie store when Redis is absent.
func newSessionStore(cfg *config.Config, redisClient *cache.RedisClient) sessions.Store {
	secure := cfg.Environment == config.EnvProduction
	if redisClient != nil {
		return auth.NewSessionStore(
			redisClient.Client(),
			[]byte(cfg.SessionAuthKey),
			[]byte(cfg.SessionEncryptionKey),
			secure,
			cfg.SessionMaxAge,
		)
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionAuthKey), []byte(cfg.SessionEncryptionKey))
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	if cfg.SessionMaxAge > 0 {
		store.MaxAge(int(cfg.SessionMaxAge.Seconds()))
	}
	return store
}

func sessionBackend(redisClient *cache.RedisClient) string {
	if redisClient != nil {
		return "redis"
	}
	return "cookie"
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) {
	userApi.UserRoutes(r, a)
	todoApi.TodoRoutes(r, a)
}
