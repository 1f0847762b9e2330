package main

import (
	"context"
	"embed"

	"github.com/ghuser/todos/pkg/config"
	"github.com/ghuser/todos/pkg/logger"
	"github.com/ghuser/todos/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := migrator.RunMigrations(context.Background(), cfg.DatabaseURL, MigrationsFS, "user", logger.New(cfg)); err != nil {
		panic(err)
	}
}
