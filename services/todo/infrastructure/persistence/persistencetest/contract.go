// Package persistencetest holds the behaviour every TodoRepository must share.
// Store packages run it from their own tests, in process or against a live backend.
package persistencetest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tododomain "github.com/ghuser/todos/services/todo/domain"
	"github.com/ghuser/todos/services/todo/domain/models"
	"github.com/ghuser/todos/services/todo/domain/repositories"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set; skipping integration tests", key)
	}
	return value
}

// NewTodo builds a todo with a microsecond-precision CreatedAt so it survives
// a round trip through any backend unchanged.
func NewTodo(ownerID uuid.UUID, text string, createdAt time.Time) *models.Todo {
	createdAt = createdAt.UTC().Truncate(time.Microsecond)
	return &models.Todo{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Text:      models.TodoText(text),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// Run exercises repo against the TodoRepository contract. Each subtest uses
// fresh owner IDs, so a shared backend does not need cleaning between runs.
func Run(t *testing.T, repo repositories.TodoRepository) {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	seed := func(t *testing.T, ownerID uuid.UUID, n int) []*models.Todo {
		t.Helper()
		todos := make([]*models.Todo, n)
		for i := range n {
			todos[i] = NewTodo(ownerID, fmt.Sprintf("todo %02d", i), base.Add(time.Duration(i)*time.Second))
			require.NoError(t, repo.Save(ctx, todos[i]))
		}
		return todos
	}

	t.Run("Save then GetByID round-trips", func(t *testing.T) {
		todo := NewTodo(uuid.New(), "Buy milk", base)
		require.NoError(t, repo.Save(ctx, todo))

		got, err := repo.GetByID(ctx, todo.OwnerID, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, todo.ID, got.ID)
		assert.Equal(t, todo.OwnerID, got.OwnerID)
		assert.Equal(t, todo.Text, got.Text)
		assert.False(t, got.Completed)
		assert.True(t, todo.CreatedAt.Equal(got.CreatedAt), "CreatedAt %v != %v", got.CreatedAt, todo.CreatedAt)
	})

	t.Run("GetByID unknown id is not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New(), uuid.New())
		assert.True(t, errors.Is(err, tododomain.ErrTodoNotFound), "got %v", err)
		assert.False(t, errors.Is(err, tododomain.ErrTodoNotOwned), "got %v", err)
	})

	t.Run("GetByID foreign owner is not owned", func(t *testing.T) {
		todo := NewTodo(uuid.New(), "Secret", base)
		require.NoError(t, repo.Save(ctx, todo))

		_, err := repo.GetByID(ctx, uuid.New(), todo.ID)
		assert.True(t, errors.Is(err, tododomain.ErrTodoNotOwned), "got %v", err)
		assert.True(t, errors.Is(err, tododomain.ErrTodoNotFound), "got %v", err)
	})

	t.Run("FindByOwnerID paginates newest first", func(t *testing.T) {
		owner := uuid.New()
		todos := seed(t, owner, 12)

		var seen []uuid.UUID
		for page, wantLen := range []int{5, 5, 2, 0} {
			got, total, err := repo.FindByOwnerID(ctx, owner, repositories.TodoFilter{}, repositories.QueryOpts{Limit: 5, Offset: page * 5})
			require.NoError(t, err)
			assert.Equal(t, 12, total)
			require.Len(t, got, wantLen, "page %d", page+1)
			for _, todo := range got {
				seen = append(seen, todo.ID)
			}
		}

		require.Len(t, seen, 12)
		for i, id := range seen {
			assert.Equal(t, todos[11-i].ID, id, "position %d", i)
		}
	})

	t.Run("FindByOwnerID past the last offset is empty", func(t *testing.T) {
		owner := uuid.New()
		seed(t, owner, 2)

		for _, filter := range []repositories.TodoFilter{{}, {Search: "todo"}} {
			got, total, err := repo.FindByOwnerID(ctx, owner, filter, repositories.QueryOpts{Limit: 3, Offset: math.MaxInt - 3})
			require.NoError(t, err)
			assert.Empty(t, got)
			assert.Equal(t, 2, total)
		}
	})

	t.Run("FindByOwnerID never returns other owners", func(t *testing.T) {
		alice, bob := uuid.New(), uuid.New()
		seed(t, alice, 3)
		seed(t, bob, 2)

		got, total, err := repo.FindByOwnerID(ctx, bob, repositories.TodoFilter{}, repositories.QueryOpts{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		for _, todo := range got {
			assert.Equal(t, bob, todo.OwnerID)
		}
	})

	t.Run("FindByOwnerID filters compose", func(t *testing.T) {
		owner := uuid.New()
		for i, text := range []string{"Buy MILK", "buy eggs", "Walk dog", "Milkshake", "100% done", "under_score"} {
			todo := NewTodo(owner, text, base.Add(time.Duration(i)*time.Second))
			todo.Completed = i%2 == 0
			require.NoError(t, repo.Save(ctx, todo))
		}
		yes, no := true, false

		tests := []struct {
			name   string
			filter repositories.TodoFilter
			want   []string
		}{
			{"search is case-insensitive", repositories.TodoFilter{Search: "milk"}, []string{"Milkshake", "Buy MILK"}},
			{"completed", repositories.TodoFilter{Completed: &yes}, []string{"100% done", "Walk dog", "Buy MILK"}},
			{"incomplete", repositories.TodoFilter{Completed: &no}, []string{"under_score", "Milkshake", "buy eggs"}},
			{"search and completed", repositories.TodoFilter{Search: "MILK", Completed: &yes}, []string{"Buy MILK"}},
			{"search and incomplete", repositories.TodoFilter{Search: "buy", Completed: &no}, []string{"buy eggs"}},
			{"percent is literal", repositories.TodoFilter{Search: "%"}, []string{"100% done"}},
			{"underscore is literal", repositories.TodoFilter{Search: "_"}, []string{"under_score"}},
			{"no match", repositories.TodoFilter{Search: "zebra"}, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, total, err := repo.FindByOwnerID(ctx, owner, tt.filter, repositories.QueryOpts{Limit: 10})
				require.NoError(t, err)
				assert.Equal(t, len(tt.want), total)
				var texts []string
				for _, todo := range got {
					texts = append(texts, todo.Text.String())
				}
				assert.Equal(t, tt.want, texts)
			})
		}
	})

	t.Run("Update applies only present fields", func(t *testing.T) {
		todo := NewTodo(uuid.New(), "Buy milk", base)
		require.NoError(t, repo.Save(ctx, todo))

		done := true
		got, err := repo.Update(ctx, todo.OwnerID, todo.ID, models.TodoPatch{Completed: &done})
		require.NoError(t, err)
		assert.True(t, got.Completed)
		assert.Equal(t, models.TodoText("Buy milk"), got.Text)
		assert.True(t, got.UpdatedAt.After(todo.UpdatedAt), "UpdatedAt not refreshed")

		text := models.TodoText("Buy oat milk")
		got, err = repo.Update(ctx, todo.OwnerID, todo.ID, models.TodoPatch{Text: &text})
		require.NoError(t, err)
		assert.True(t, got.Completed, "completed must survive a text-only patch")
		assert.Equal(t, text, got.Text)

		stored, err := repo.GetByID(ctx, todo.OwnerID, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, text, stored.Text)
		assert.True(t, stored.Completed)
		assert.True(t, todo.CreatedAt.Equal(stored.CreatedAt), "CreatedAt must never change")
	})

	t.Run("Update with empty patch returns current record", func(t *testing.T) {
		todo := NewTodo(uuid.New(), "Buy milk", base)
		require.NoError(t, repo.Save(ctx, todo))

		got, err := repo.Update(ctx, todo.OwnerID, todo.ID, models.TodoPatch{})
		require.NoError(t, err)
		assert.Equal(t, todo.Text, got.Text)
		assert.True(t, todo.UpdatedAt.Equal(got.UpdatedAt))
	})

	t.Run("Update foreign or missing todo fails", func(t *testing.T) {
		todo := NewTodo(uuid.New(), "Buy milk", base)
		require.NoError(t, repo.Save(ctx, todo))
		done := true

		_, err := repo.Update(ctx, uuid.New(), todo.ID, models.TodoPatch{Completed: &done})
		assert.True(t, errors.Is(err, tododomain.ErrTodoNotFound), "got %v", err)

		_, err = repo.Update(ctx, todo.OwnerID, uuid.New(), models.TodoPatch{Completed: &done})
		assert.True(t, errors.Is(err, tododomain.ErrTodoNotFound), "got %v", err)

		stored, err := repo.GetByID(ctx, todo.OwnerID, todo.ID)
		require.NoError(t, err)
		assert.False(t, stored.Completed, "foreign update must not modify the record")
	})

	t.Run("Delete twice is not found", func(t *testing.T) {
		todo := NewTodo(uuid.New(), "Buy milk", base)
		require.NoError(t, repo.Save(ctx, todo))

		require.NoError(t, repo.Delete(ctx, todo.OwnerID, todo.ID))
		err := repo.Delete(ctx, todo.OwnerID, todo.ID)
		assert.True(t, errors.Is(err, tododomain.ErrTodoNotFound), "got %v", err)

		_, err = repo.GetByID(ctx, todo.OwnerID, todo.ID)
		assert.True(t, errors.Is(err, tododomain.ErrTodoNotFound), "got %v", err)

		_, total, err := repo.FindByOwnerID(ctx, todo.OwnerID, repositories.TodoFilter{}, repositories.QueryOpts{Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("Delete by foreign owner leaves record", func(t *testing.T) {
		todo := NewTodo(uuid.New(), "Buy milk", base)
		require.NoError(t, repo.Save(ctx, todo))

		err := repo.Delete(ctx, uuid.New(), todo.ID)
		assert.True(t, errors.Is(err, tododomain.ErrTodoNotFound), "got %v", err)

		_, err = repo.GetByID(ctx, todo.OwnerID, todo.ID)
		assert.NoError(t, err)
	})
}

// RunWatch exercises a store that also implements ChangeNotifier.
func RunWatch(t *testing.T, repo repositories.TodoRepository, notifier repositories.ChangeNotifier) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	owner, other := uuid.New(), uuid.New()
	ch, err := notifier.Watch(ctx, owner)
	require.NoError(t, err)

	next := func() models.Change {
		t.Helper()
		select {
		case c, ok := <-ch:
			require.True(t, ok, "watch channel closed")
			return c
		case <-ctx.Done():
			t.Fatal("timed out waiting for change")
			return models.Change{}
		}
	}

	require.NoError(t, repo.Save(ctx, NewTodo(other, "not mine", time.Now())))
	todo := NewTodo(owner, "Buy milk", time.Now())
	require.NoError(t, repo.Save(ctx, todo))

	c := next()
	assert.Equal(t, models.ChangeCreated, c.Type)
	assert.Equal(t, todo.ID, c.TodoID)
	require.NotNil(t, c.Todo)
	assert.Equal(t, todo.Text, c.Todo.Text)

	done := true
	_, err = repo.Update(ctx, owner, todo.ID, models.TodoPatch{Completed: &done})
	require.NoError(t, err)
	c = next()
	assert.Equal(t, models.ChangeUpdated, c.Type)
	require.NotNil(t, c.Todo)
	assert.True(t, c.Todo.Completed)

	require.NoError(t, repo.Delete(ctx, owner, todo.ID))
	c = next()
	assert.Equal(t, models.ChangeDeleted, c.Type)
	assert.Equal(t, todo.ID, c.TodoID)
	assert.Nil(t, c.Todo)
}
