package subscribers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgcache "github.com/ghuser/todos/pkg/cache"
	pkgevents "github.com/ghuser/todos/pkg/events"
	"github.com/ghuser/todos/pkg/logger"
	"github.com/ghuser/todos/services/todo/domain/events"
	"github.com/ghuser/todos/services/todo/domain/models"
)

type recordingCache struct {
	sets    []pkgcache.CachedTodo
	deletes []uuid.UUID
	err     error
}

func (c *recordingCache) Get(context.Context, uuid.UUID, uuid.UUID) (*pkgcache.CachedTodo, error) {
	return nil, errors.New("not used")
}

func (c *recordingCache) Set(_ context.Context, t *pkgcache.CachedTodo) error {
	c.sets = append(c.sets, *t)
	return c.err
}

func (c *recordingCache) Delete(_ context.Context, _, id uuid.UUID) error {
	c.deletes = append(c.deletes, id)
	return c.err
}

type recordingPublisher struct {
	changes []models.Change
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, c models.Change) error {
	p.changes = append(p.changes, c)
	return p.err
}

func eventMessage(t *testing.T, evt events.TodoEvent) *message.Message {
	t.Helper()
	payload, err := json.Marshal(evt)
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func TestProjector_CreatedAndUpdatedWarmCache(t *testing.T) {
	ctx := context.Background()
	cache := &recordingCache{}
	pub := &recordingPublisher{}
	p := NewProjector(cache, pub, logger.Discard())

	todo := models.NewTodo(uuid.New(), "Buy milk")
	evt := events.NewTodoEvent(todo.OwnerID, todo.ID, todo, time.Now())

	for _, topic := range []string{events.TopicTodoCreated, events.TopicTodoUpdated} {
		require.NoError(t, p.Handler(topic)(ctx, eventMessage(t, evt)))
	}

	require.Len(t, cache.sets, 2)
	assert.Equal(t, todo.ID, cache.sets[0].ID)
	assert.Equal(t, "Buy milk", cache.sets[0].Text)
	assert.True(t, cache.sets[0].UpdatedAt.Equal(todo.UpdatedAt))
	assert.Empty(t, cache.deletes)

	require.Len(t, pub.changes, 2)
	assert.Equal(t, models.ChangeCreated, pub.changes[0].Type)
	assert.Equal(t, models.ChangeUpdated, pub.changes[1].Type)
	assert.Equal(t, todo.OwnerID, pub.changes[1].OwnerID)
}

func TestProjector_DeletedInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	cache := &recordingCache{}
	pub := &recordingPublisher{}
	p := NewProjector(cache, pub, logger.Discard())

	owner, id := uuid.New(), uuid.New()
	evt := events.NewTodoEvent(owner, id, nil, time.Now())
	require.NoError(t, p.Handler(events.TopicTodoDeleted)(ctx, eventMessage(t, evt)))

	assert.Equal(t, []uuid.UUID{id}, cache.deletes)
	assert.Empty(t, cache.sets)
	require.Len(t, pub.changes, 1)
	assert.Equal(t, models.ChangeDeleted, pub.changes[0].Type)
	assert.Nil(t, pub.changes[0].Todo)
}

func TestProjector_CacheFailureDoesNotBlockBroadcast(t *testing.T) {
	cache := &recordingCache{err: errors.New("redis down")}
	pub := &recordingPublisher{}
	p := NewProjector(cache, pub, logger.Discard())

	todo := models.NewTodo(uuid.New(), "Buy milk")
	evt := events.NewTodoEvent(todo.OwnerID, todo.ID, todo, time.Now())
	require.NoError(t, p.Handler(events.TopicTodoCreated)(context.Background(), eventMessage(t, evt)))
	assert.Len(t, pub.changes, 1)
}

func TestProjector_BroadcastFailureIsRetried(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis down")}
	p := NewProjector(nil, pub, logger.Discard())

	todo := models.NewTodo(uuid.New(), "Buy milk")
	evt := events.NewTodoEvent(todo.OwnerID, todo.ID, todo, time.Now())
	err := p.Handler(events.TopicTodoCreated)(context.Background(), eventMessage(t, evt))
	assert.ErrorIs(t, err, pub.err)
	assert.False(t, pkgevents.IsPermanent(err))
}

func TestProjector_RejectsUnusableMessagesPermanently(t *testing.T) {
	ctx := context.Background()
	cache := &recordingCache{}
	pub := &recordingPublisher{}
	p := NewProjector(cache, pub, logger.Discard())

	malformed := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	err := p.Handler(events.TopicTodoCreated)(ctx, malformed)
	require.Error(t, err)
	assert.True(t, pkgevents.IsPermanent(err))

	evt := events.NewTodoEvent(uuid.New(), uuid.New(), nil, time.Now())
	err = p.Handler("todo.archived")(ctx, eventMessage(t, evt))
	require.Error(t, err)
	assert.True(t, pkgevents.IsPermanent(err))

	assert.Empty(t, cache.sets)
	assert.Empty(t, cache.deletes)
	assert.Empty(t, pub.changes)
}
