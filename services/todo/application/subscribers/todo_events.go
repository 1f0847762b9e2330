// Package subscribers turns todo outbox events into side effects outside the
// request path: the Redis read-model cache and the per-owner change channel.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	pkgcache "github.com/ghuser/todos/pkg/cache"
	pkgevents "github.com/ghuser/todos/pkg/events"
	"github.com/ghuser/todos/pkg/logger"
	appsvcs "github.com/ghuser/todos/services/todo/application/services"
	"github.com/ghuser/todos/services/todo/domain/events"
	"github.com/ghuser/todos/services/todo/domain/models"
)

// ChangePublisher broadcasts a change to the owner's watchers.
// *notify.RedisNotifier implements it.
type ChangePublisher interface {
	Publish(ctx context.Context, c models.Change) error
}

// Projector applies todo events to the cache and the change channel.
// Either collaborator may be nil.
type Projector struct {
	cache   appsvcs.TodoCache
	changes ChangePublisher
	log     logger.Logger
}

// NewProjector returns a Projector writing to cache and changes.
func NewProjector(cache appsvcs.TodoCache, changes ChangePublisher, log logger.Logger) *Projector {
	return &Projector{cache: cache, changes: changes, log: log}
}

// Handler returns the EventBus handler for topic.
// Handlers must be idempotent; EventBus retries up to 3× on failure.
// Messages no redelivery can fix fail with a permanent error.
func (p *Projector) Handler(topic string) func(context.Context, *message.Message) error {
	typ, known := events.ChangeType(topic)
	return func(ctx context.Context, msg *message.Message) error {
		if !known {
			return pkgevents.Permanent(fmt.Errorf("no projection for topic %s", topic))
		}

		var evt events.TodoEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return pkgevents.Permanent(fmt.Errorf("decode %s: %w", topic, err))
		}

		p.project(ctx, typ, evt)

		if p.changes != nil {
			if err := p.changes.Publish(ctx, evt.Change(typ)); err != nil {
				return fmt.Errorf("broadcast %s %s: %w", topic, evt.TodoID, err)
			}
		}
		return nil
	}
}

// project updates the read model. Cache writes are best-effort: a failure is
// logged and the next read falls through to the store.
func (p *Projector) project(ctx context.Context, typ models.ChangeType, evt events.TodoEvent) {
	if p.cache == nil {
		return
	}

	var err error
	if todo := evt.Todo(); typ != models.ChangeDeleted && todo != nil {
		err = p.cache.Set(ctx, &pkgcache.CachedTodo{
			ID:        todo.ID,
			OwnerID:   todo.OwnerID,
			Text:      todo.Text.String(),
			Completed: todo.Completed,
			CreatedAt: todo.CreatedAt,
			UpdatedAt: todo.UpdatedAt,
		})
	} else {
		err = p.cache.Delete(ctx, evt.OwnerID, evt.TodoID)
	}

	if err != nil {
		p.log.WarnContext(ctx, "todo cache projection failed",
			"change", typ, "todo_id", evt.TodoID, "error", err)
		return
	}
	p.log.DebugContext(ctx, "todo cache projected", "change", typ, "todo_id", evt.TodoID)
}
