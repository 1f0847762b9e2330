// Package notify fans todo changes out to Watch subscribers, either inside one
// process (Broker) or across processes over Redis pub/sub (RedisNotifier).
package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ghuser/todos/services/todo/domain/models"
	"github.com/ghuser/todos/services/todo/domain/repositories"
)

// subscriberBuffer bounds how far a slow watcher may fall behind before
// changes are dropped for it.
const subscriberBuffer = 16

var _ repositories.ChangeNotifier = (*Broker)(nil)

// Broker is an in-process ChangeNotifier. Publish never blocks: a subscriber
// whose buffer is full misses the change and is expected to re-list.
type Broker struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan models.Change]struct{}
}

// NewBroker returns an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[uuid.UUID]map[chan models.Change]struct{})}
}

// Watch subscribes to ownerID's changes until ctx is done.
func (b *Broker) Watch(ctx context.Context, ownerID uuid.UUID) (<-chan models.Change, error) {
	ch := make(chan models.Change, subscriberBuffer)

	b.mu.Lock()
	if b.subs[ownerID] == nil {
		b.subs[ownerID] = make(map[chan models.Change]struct{})
	}
	b.subs[ownerID][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(ownerID, ch)
	}()
	return ch, nil
}

// Publish delivers c to every watcher of c.OwnerID.
func (b *Broker) Publish(c models.Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[c.OwnerID] {
		select {
		case ch <- c:
		default:
		}
	}
}

func (b *Broker) unsubscribe(ownerID uuid.UUID, ch chan models.Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ownerID][ch]; !ok {
		return
	}
	delete(b.subs[ownerID], ch)
	if len(b.subs[ownerID]) == 0 {
		delete(b.subs, ownerID)
	}
	close(ch)
}
