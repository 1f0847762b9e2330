package services

import (
	"github.com/ghuser/todos/pkg/app"
	"github.com/ghuser/todos/pkg/config"
	"github.com/ghuser/todos/services/user/domain/repositories"
	"github.com/ghuser/todos/services/user/infrastructure/persistence/memory"
	"github.com/ghuser/todos/services/user/infrastructure/persistence/postgres"
	userredis "github.com/ghuser/todos/services/user/infrastructure/persistence/redis"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	User *UserService
}

// New wires the user services with infrastructure from the Application container.
// Accounts live in the same backend as todos.
func New(a *app.Application) *Services {
	return &Services{
		User: NewUserService(NewRepository(a), a.Logger),
	}
}

// NewRepository returns the UserRepository matching a.Config.TodoStore.
func NewRepository(a *app.Application) repositories.UserRepository {
	switch a.Config.TodoStore {
	case config.StoreRedis:
		return userredis.NewUserRepository(a.Redis.Client())
	case config.StoreMemory:
		return memory.NewUserRepository()
	default:
		return postgres.NewUserRepository(a.Db)
	}
}
