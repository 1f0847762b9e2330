package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ghuser/todos/pkg/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoCache_Key(t *testing.T) {
	c := NewTodoCache(nil)
	owner := uuid.MustParse("660e8400-e29b-41d4-a716-446655440000")
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	assert.Equal(t, "todo:660e8400-e29b-41d4-a716-446655440000:550e8400-e29b-41d4-a716-446655440000", c.key(owner, id))
}

// Integration tests: skipped unless REDIS_URL is set.
func TestTodoCacheIntegration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}

	rc, err := NewRedisClient(newTestConfig(redisURL, config.StoreRedis))
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck

	ctx := context.Background()
	c := NewTodoCache(rc)
	created := time.Now().UTC().Truncate(time.Microsecond)

	newTodo := func() *CachedTodo {
		return &CachedTodo{
			ID:        uuid.New(),
			OwnerID:   uuid.New(),
			Text:      "Buy milk",
			CreatedAt: created,
			UpdatedAt: created,
		}
	}

	t.Run("Set then Get round-trips", func(t *testing.T) {
		todo := newTodo()
		require.NoError(t, c.Set(ctx, todo))

		got, err := c.Get(ctx, todo.OwnerID, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, todo.Text, got.Text)
		assert.True(t, got.UpdatedAt.Equal(todo.UpdatedAt))
	})

	t.Run("Get with another owner misses", func(t *testing.T) {
		todo := newTodo()
		require.NoError(t, c.Set(ctx, todo))

		_, err := c.Get(ctx, uuid.New(), todo.ID)
		assert.True(t, errors.Is(err, redis.Nil))
	})

	t.Run("older version does not overwrite newer", func(t *testing.T) {
		todo := newTodo()
		newer := *todo
		newer.Text = "Buy oat milk"
		newer.UpdatedAt = created.Add(time.Second)
		require.NoError(t, c.Set(ctx, &newer))
		require.NoError(t, c.Set(ctx, todo))

		got, err := c.Get(ctx, todo.OwnerID, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, "Buy oat milk", got.Text)
	})

	t.Run("Delete leaves a tombstone that Set cannot revive", func(t *testing.T) {
		todo := newTodo()
		require.NoError(t, c.Set(ctx, todo))
		require.NoError(t, c.Delete(ctx, todo.OwnerID, todo.ID))
		require.NoError(t, c.Set(ctx, todo))

		_, err := c.Get(ctx, todo.OwnerID, todo.ID)
		assert.True(t, errors.Is(err, redis.Nil))
	})
}
