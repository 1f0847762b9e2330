// Package redis stores todos as Redis documents: one hash per todo plus a
// per-owner sorted set scored by creation time, which gives newest-first
// listing without a secondary index. Every write is re-published on the
// owner's change channel, so this store also serves Watch.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/todos/pkg/logger"
	tododomain "github.com/ghuser/todos/services/todo/domain"
	"github.com/ghuser/todos/services/todo/domain/models"
	"github.com/ghuser/todos/services/todo/domain/repositories"
	"github.com/ghuser/todos/services/todo/infrastructure/notify"
)

const (
	keyPrefix = "todos:"
	// maxTxRetries bounds optimistic-lock retries when concurrent writers collide.
	maxTxRetries = 10
)

var (
	_ repositories.TodoRepository = (*TodoRepository)(nil)
	_ repositories.ChangeNotifier = (*TodoRepository)(nil)
)

// TodoRepository implements repositories.TodoRepository against Redis.
type TodoRepository struct {
	client   *redis.Client
	notifier *notify.RedisNotifier
	log      logger.Logger
	now      func() time.Time
}

// NewTodoRepository returns a repository on the given client.
func NewTodoRepository(client *redis.Client, log logger.Logger) *TodoRepository {
	return &TodoRepository{
		client:   client,
		notifier: notify.NewRedisNotifier(client, log),
		log:      log,
		now:      time.Now,
	}
}

func todoKey(id uuid.UUID) string       { return keyPrefix + "todo:" + id.String() }
func ownerIndexKey(id uuid.UUID) string { return keyPrefix + "owner:" + id.String() }

// Save writes the document and its index entry in one MULTI/EXEC.
func (r *TodoRepository) Save(ctx context.Context, todo *models.Todo) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, todoKey(todo.ID), toHash(todo))
		pipe.ZAdd(ctx, ownerIndexKey(todo.OwnerID), redis.Z{
			Score:  float64(todo.CreatedAt.UnixMicro()),
			Member: todo.ID.String(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	r.publish(ctx, models.NewChange(models.ChangeCreated, todo.OwnerID, todo.ID, todo))
	return nil
}

// GetByID loads the document and checks its owner.
func (r *TodoRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Todo, error) {
	todo, err := load(ctx, r.client, id)
	if err != nil {
		return nil, err
	}
	if todo.OwnerID != ownerID {
		return nil, tododomain.ErrTodoNotOwned
	}
	return todo, nil
}

// FindByOwnerID reads the owner's index newest first. Without a filter only
// the requested page is fetched; with one, every document of the owner is
// scanned and filtered in process.
func (r *TodoRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, filter repositories.TodoFilter, opts repositories.QueryOpts) ([]*models.Todo, int, error) {
	index := ownerIndexKey(ownerID)

	if filter == (repositories.TodoFilter{}) {
		total, err := r.client.ZCard(ctx, index).Result()
		if err != nil {
			return nil, 0, fmt.Errorf("count todos: %w", err)
		}
		if opts.Offset >= int(total) {
			return []*models.Todo{}, int(total), nil
		}
		ids, err := r.client.ZRevRange(ctx, index, int64(opts.Offset), int64(opts.Offset+opts.Limit-1)).Result()
		if err != nil {
			return nil, 0, fmt.Errorf("query todos: %w", err)
		}
		todos, err := r.loadMany(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		return todos, int(total), nil
	}

	ids, err := r.client.ZRevRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("query todos: %w", err)
	}
	all, err := r.loadMany(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	page := make([]*models.Todo, 0, opts.Limit)
	total := 0
	for _, todo := range all {
		if !filter.Matches(todo) {
			continue
		}
		if total >= opts.Offset && len(page) < opts.Limit {
			page = append(page, todo)
		}
		total++
	}
	return page, total, nil
}

// Update applies patch under WATCH so a concurrent write to the same document
// retries instead of being lost.
func (r *TodoRepository) Update(ctx context.Context, ownerID, id uuid.UUID, patch models.TodoPatch) (*models.Todo, error) {
	key := todoKey(id)
	var updated *models.Todo

	txf := func(tx *redis.Tx) error {
		todo, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if todo.OwnerID != ownerID {
			return tododomain.ErrTodoNotOwned
		}
		if patch.IsEmpty() {
			updated = todo
			return nil
		}
		todo.Apply(patch, r.now())
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, toHash(todo))
			return nil
		})
		updated = todo
		return err
	}

	if err := r.withRetry(ctx, txf, key); err != nil {
		return nil, err
	}
	if !patch.IsEmpty() {
		r.publish(ctx, models.NewChange(models.ChangeUpdated, ownerID, id, updated))
	}
	return updated, nil
}

// Delete removes the document and its index entry.
func (r *TodoRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	key := todoKey(id)

	txf := func(tx *redis.Tx) error {
		owner, err := tx.HGet(ctx, key, "owner_id").Result()
		if errors.Is(err, redis.Nil) {
			return tododomain.ErrTodoNotFound
		}
		if err != nil {
			return fmt.Errorf("query todo: %w", err)
		}
		if owner != ownerID.String() {
			return tododomain.ErrTodoNotOwned
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, ownerIndexKey(ownerID), id.String())
			return nil
		})
		return err
	}

	if err := r.withRetry(ctx, txf, key); err != nil {
		return err
	}
	r.publish(ctx, models.NewChange(models.ChangeDeleted, ownerID, id, nil))
	return nil
}

// Watch streams the owner's changes from the Redis channel.
func (r *TodoRepository) Watch(ctx context.Context, ownerID uuid.UUID) (<-chan models.Change, error) {
	return r.notifier.Watch(ctx, ownerID)
}

func (r *TodoRepository) withRetry(ctx context.Context, txf func(*redis.Tx) error, key string) error {
	for range maxTxRetries {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, tododomain.ErrTodoNotFound) {
			return fmt.Errorf("todo tx: %w", err)
		}
		return err
	}
	return fmt.Errorf("todo tx: too much contention on %s", key)
}

// publish is best-effort: the write has already committed.
func (r *TodoRepository) publish(ctx context.Context, c models.Change) {
	if err := r.notifier.Publish(ctx, c); err != nil {
		r.log.WarnContext(ctx, "publish todo change failed", "todo_id", c.TodoID, "type", c.Type, "error", err)
	}
}

func (r *TodoRepository) loadMany(ctx context.Context, ids []string) ([]*models.Todo, error) {
	if len(ids) == 0 {
		return []*models.Todo{}, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, keyPrefix+"todo:"+id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load todos: %w", err)
	}

	todos := make([]*models.Todo, 0, len(ids))
	for _, cmd := range cmds {
		vals := cmd.Val()
		if len(vals) == 0 {
			continue // deleted between the index read and the load
		}
		todo, err := fromHash(vals)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, nil
}

func load(ctx context.Context, c redis.Cmdable, id uuid.UUID) (*models.Todo, error) {
	vals, err := c.HGetAll(ctx, todoKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("query todo: %w", err)
	}
	if len(vals) == 0 {
		return nil, tododomain.ErrTodoNotFound
	}
	return fromHash(vals)
}

func toHash(t *models.Todo) map[string]any {
	return map[string]any{
		"id":         t.ID.String(),
		"owner_id":   t.OwnerID.String(),
		"text":       t.Text.String(),
		"completed":  strconv.FormatBool(t.Completed),
		"created_at": t.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromHash(vals map[string]string) (*models.Todo, error) {
	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	ownerID, err := uuid.Parse(vals["owner_id"])
	if err != nil {
		return nil, fmt.Errorf("parse owner_id: %w", err)
	}
	completed, err := strconv.ParseBool(vals["completed"])
	if err != nil {
		return nil, fmt.Errorf("parse completed: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &models.Todo{
		ID:        id,
		OwnerID:   ownerID,
		Text:      models.TodoText(vals["text"]),
		Completed: completed,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
