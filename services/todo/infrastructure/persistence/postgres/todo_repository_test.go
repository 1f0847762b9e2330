package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/todos/pkg/database"
	"github.com/ghuser/todos/pkg/logger"
	"github.com/ghuser/todos/pkg/migrator"
	"github.com/ghuser/todos/services/todo/domain/repositories"
	"github.com/ghuser/todos/services/todo/infrastructure/persistence/persistencetest"
)

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"milk":      "milk",
		"100%":      `100\%`,
		"a_b":       `a\_b`,
		`back\path`: `back\\path`,
	}
	for in, want := range tests {
		assert.Equal(t, want, escapeLike(in), "escapeLike(%q)", in)
	}
}

func TestWhereClause(t *testing.T) {
	owner := uuid.New()
	done := true

	tests := []struct {
		name     string
		filter   repositories.TodoFilter
		wantSQL  string
		wantArgs []any
	}{
		{"owner only", repositories.TodoFilter{}, "WHERE owner_id = $1", []any{owner}},
		{"search", repositories.TodoFilter{Search: "milk"}, `WHERE owner_id = $1 AND text ILIKE $2 ESCAPE '\'`, []any{owner, "%milk%"}},
		{"status", repositories.TodoFilter{Completed: &done}, "WHERE owner_id = $1 AND completed = $2", []any{owner, true}},
		{"search and status", repositories.TodoFilter{Search: "5%", Completed: &done},
			`WHERE owner_id = $1 AND text ILIKE $2 ESCAPE '\' AND completed = $3`, []any{owner, `%5\%%`, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotArgs := whereClause(owner, tt.filter)
			assert.Equal(t, tt.wantSQL, gotSQL)
			assert.Equal(t, tt.wantArgs, gotArgs)
		})
	}
}

// Integration tests: skipped unless DATABASE_URL is set.
func TestTodoRepositoryIntegration(t *testing.T) {
	url := persistencetest.RequireEnv(t, "DATABASE_URL")
	require.NoError(t, migrator.RunMigrations(context.Background(), url, os.DirFS("../../../../../migrations/todo"), "todo", logger.Discard()))

	db, err := database.NewPool(context.Background(), url, logger.Discard())
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	persistencetest.Run(t, NewTodoRepository(db, nil))
}
