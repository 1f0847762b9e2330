package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// TodoCacheTTL is the time-to-live for cached todos and delete tombstones.
	TodoCacheTTL = 24 * time.Hour

	todoCacheKeyPrefix = "todo"

	// tombstoneVersion outranks every real version, so a deleted todo is never re-cached.
	tombstoneVersion = 1<<53 - 1
)

// setIfNewer replaces the hash only when ARGV[1] is newer than the stored version.
// KEYS[1] cache key; ARGV[1] version; ARGV[2] ttl seconds; ARGV[3..] field/value pairs.
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'version')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'version', ARGV[1], unpack(ARGV, 3))
redis.call('EXPIRE', KEYS[1], ARGV[2])
return 1
`)

// CachedTodo is the denormalized read model stored in Redis.
// Fields are stored as a Redis hash.
type CachedTodo struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoCache provides structured read/write operations for todo cache entries.
// Keys are scoped by ownerID so one user's lookup can never hit another's entry.
// Key format: "todo:{ownerID}:{todoID}"
//
// Writes are versioned by UpdatedAt: an older snapshot never replaces a newer one,
// and Delete leaves a tombstone that no later Set can overwrite. This keeps the
// cache correct when event-driven warming arrives out of order.
type TodoCache struct {
	client *RedisClient
}

// NewTodoCache creates a new TodoCache backed by the given RedisClient.
func NewTodoCache(r *RedisClient) *TodoCache {
	return &TodoCache{client: r}
}

// Get retrieves a cached todo by owner + todo ID.
// Returns redis.Nil when the key does not exist, has expired, or is a tombstone.
func (c *TodoCache) Get(ctx context.Context, ownerID, todoID uuid.UUID) (*CachedTodo, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(ownerID, todoID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 || vals["deleted"] == "1" {
		return nil, redis.Nil
	}

	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	oid, err := uuid.Parse(vals["owner_id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse owner_id: %w", err)
	}
	completed, err := strconv.ParseBool(vals["completed"])
	if err != nil {
		return nil, fmt.Errorf("cache parse completed: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}

	return &CachedTodo{
		ID:        id,
		OwnerID:   oid,
		Text:      vals["text"],
		Completed: completed,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Set writes a cached todo as a Redis hash with a 24-hour TTL, unless the entry
// already holds the same or a newer version (or a tombstone).
func (c *TodoCache) Set(ctx context.Context, todo *CachedTodo) error {
	err := setIfNewer.Run(ctx, c.client.Client(), []string{c.key(todo.OwnerID, todo.ID)},
		todo.UpdatedAt.UnixMicro(),
		int(TodoCacheTTL.Seconds()),
		"id", todo.ID.String(),
		"owner_id", todo.OwnerID.String(),
		"text", todo.Text,
		"completed", strconv.FormatBool(todo.Completed),
		"created_at", todo.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at", todo.UpdatedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete replaces a cached todo with a tombstone.
func (c *TodoCache) Delete(ctx context.Context, ownerID, todoID uuid.UUID) error {
	err := setIfNewer.Run(ctx, c.client.Client(), []string{c.key(ownerID, todoID)},
		tombstoneVersion,
		int(TodoCacheTTL.Seconds()),
		"deleted", "1",
	).Err()
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "todo:{ownerID}:{todoID}"
func (c *TodoCache) key(ownerID, todoID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", todoCacheKeyPrefix, ownerID, todoID)
}
