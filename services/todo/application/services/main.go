package services

import (
	"github.com/ghuser/todos/pkg/app"
	"github.com/ghuser/todos/pkg/cache"
	"github.com/ghuser/todos/pkg/config"
	"github.com/ghuser/todos/services/todo/domain/repositories"
	"github.com/ghuser/todos/services/todo/infrastructure/notify"
	"github.com/ghuser/todos/services/todo/infrastructure/persistence/memory"
	"github.com/ghuser/todos/services/todo/infrastructure/persistence/postgres"
	todoredis "github.com/ghuser/todos/services/todo/infrastructure/persistence/redis"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Todo *TodoService
}

// New wires all todo application services with infrastructure from the Application container.
// The store is chosen by a.Config.TodoStore; Watch is served by the store itself when it
// can observe its own writes, otherwise by the Redis change channel the worker feeds.
func New(a *app.Application) *Services {
	repo := NewRepository(a)

	opts := TodoServiceOptions{DefaultPageSize: a.Config.TodoPageSize}
	if n, ok := repo.(repositories.ChangeNotifier); ok {
		opts.Notifier = n
	} else if a.Redis != nil {
		opts.Notifier = notify.NewRedisNotifier(a.Redis.Client(), a.Logger)
	}
	if a.Config.TodoCacheEnabled && a.Redis != nil {
		opts.Cache = cache.NewTodoCache(a.Redis)
	}

	return &Services{
		Todo: NewTodoService(repo, a.Logger, opts),
	}
}

// NewRepository returns the TodoRepository selected by a.Config.TodoStore.
func NewRepository(a *app.Application) repositories.TodoRepository {
	switch a.Config.TodoStore {
	case config.StoreRedis:
		return todoredis.NewTodoRepository(a.Redis.Client(), a.Logger)
	case config.StoreMemory:
		return memory.NewTodoRepository()
	default:
		return postgres.NewTodoRepository(a.Db, a.EventBus)
	}
}
