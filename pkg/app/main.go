package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/todos/pkg/cache"
	"github.com/ghuser/todos/pkg/config"
	"github.com/ghuser/todos/pkg/database"
	"github.com/ghuser/todos/pkg/events"
	"github.com/ghuser/todos/pkg/logger"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to every service's Routes function during server initialization.
//
// Db, EventBus and Redis are nil when the configured store does not need them
// (TODO_STORE=memory); services must fall back accordingly.
//
// Logging: app.Logger is backed by a trace-aware handler; use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "todo created", "todo_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config       *config.Config
	Db           *database.Database
	Logger       logger.Logger
	EventBus     *events.EventBus
	Redis        *cache.RedisClient
	SessionStore sessions.Store // Redis-backed, or cookie-backed without Redis; nil in worker process
}
