package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/todos/pkg/logger"
	"github.com/ghuser/todos/services/todo/domain/models"
	"github.com/ghuser/todos/services/todo/domain/repositories"
)

var _ repositories.ChangeNotifier = (*RedisNotifier)(nil)

// RedisNotifier publishes and watches changes on a per-owner Redis channel:
// "todos:{ownerID}:changes". Delivery is at-most-once; watchers that are not
// connected when a change is published never see it.
type RedisNotifier struct {
	client *redis.Client
	log    logger.Logger
}

// NewRedisNotifier returns a notifier on the given client.
func NewRedisNotifier(client *redis.Client, log logger.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, log: log}
}

// Channel returns the pub/sub channel name for ownerID.
func Channel(ownerID uuid.UUID) string {
	return fmt.Sprintf("todos:%s:changes", ownerID)
}

// Publish sends c to the owner's channel.
func (n *RedisNotifier) Publish(ctx context.Context, c models.Change) error {
	payload, err := json.Marshal(toMessage(c))
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := n.client.Publish(ctx, Channel(c.OwnerID), payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Watch subscribes to ownerID's channel. The subscription is confirmed before
// Watch returns, so changes published afterwards are delivered.
func (n *RedisNotifier) Watch(ctx context.Context, ownerID uuid.UUID) (<-chan models.Change, error) {
	ps := n.client.Subscribe(ctx, Channel(ownerID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe changes: %w", err)
	}

	out := make(chan models.Change, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close() //nolint:errcheck

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var m changeMessage
				if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
					n.log.WarnContext(ctx, "notify: dropping malformed change", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- m.change():
				default:
				}
			}
		}
	}()
	return out, nil
}

// changeMessage is the JSON wire form of models.Change.
type changeMessage struct {
	Type       models.ChangeType `json:"type"`
	TodoID     uuid.UUID         `json:"todo_id"`
	OwnerID    uuid.UUID         `json:"owner_id"`
	Todo       *todoMessage      `json:"todo,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type todoMessage struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toMessage(c models.Change) changeMessage {
	m := changeMessage{
		Type:       c.Type,
		TodoID:     c.TodoID,
		OwnerID:    c.OwnerID,
		OccurredAt: c.OccurredAt,
	}
	if c.Todo != nil {
		m.Todo = &todoMessage{
			ID:        c.Todo.ID,
			OwnerID:   c.Todo.OwnerID,
			Text:      c.Todo.Text.String(),
			Completed: c.Todo.Completed,
			CreatedAt: c.Todo.CreatedAt,
			UpdatedAt: c.Todo.UpdatedAt,
		}
	}
	return m
}

func (m changeMessage) change() models.Change {
	c := models.Change{
		Type:       m.Type,
		TodoID:     m.TodoID,
		OwnerID:    m.OwnerID,
		OccurredAt: m.OccurredAt,
	}
	if m.Todo != nil {
		c.Todo = &models.Todo{
			ID:        m.Todo.ID,
			OwnerID:   m.Todo.OwnerID,
			Text:      models.TodoText(m.Todo.Text),
			Completed: m.Todo.Completed,
			CreatedAt: m.Todo.CreatedAt,
			UpdatedAt: m.Todo.UpdatedAt,
		}
	}
	return c
}
