// Package memory is a map-backed TodoRepository for tests and local development.
// Data does not survive a restart.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	tododomain "github.com/ghuser/todos/services/todo/domain"
	"github.com/ghuser/todos/services/todo/domain/models"
	"github.com/ghuser/todos/services/todo/domain/repositories"
	"github.com/ghuser/todos/services/todo/infrastructure/notify"
)

var (
	_ repositories.TodoRepository = (*TodoRepository)(nil)
	_ repositories.ChangeNotifier = (*TodoRepository)(nil)
)

type entry struct {
	todo *models.Todo
	seq  uint64 // insertion order, breaks CreatedAt ties
}

// TodoRepository keeps todos in a map guarded by a RWMutex and publishes every
// successful write to an in-process Broker.
type TodoRepository struct {
	mu     sync.RWMutex
	todos  map[uuid.UUID]entry
	seq    uint64
	broker *notify.Broker
	now    func() time.Time
}

// NewTodoRepository returns an empty repository.
func NewTodoRepository() *TodoRepository {
	return &TodoRepository{
		todos:  make(map[uuid.UUID]entry),
		broker: notify.NewBroker(),
		now:    time.Now,
	}
}

// Save stores a copy of todo.
func (r *TodoRepository) Save(_ context.Context, todo *models.Todo) error {
	r.mu.Lock()
	r.seq++
	r.todos[todo.ID] = entry{todo: todo.Clone(), seq: r.seq}
	r.mu.Unlock()

	r.broker.Publish(models.NewChange(models.ChangeCreated, todo.OwnerID, todo.ID, todo))
	return nil
}

// GetByID returns a copy of the todo if ownerID owns it.
func (r *TodoRepository) GetByID(_ context.Context, ownerID, id uuid.UUID) (*models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, err := r.lookup(ownerID, id)
	if err != nil {
		return nil, err
	}
	return e.todo.Clone(), nil
}

// FindByOwnerID filters, sorts newest first, and slices one page.
func (r *TodoRepository) FindByOwnerID(_ context.Context, ownerID uuid.UUID, filter repositories.TodoFilter, opts repositories.QueryOpts) ([]*models.Todo, int, error) {
	r.mu.RLock()
	matches := make([]entry, 0)
	for _, e := range r.todos {
		if e.todo.OwnerID == ownerID && filter.Matches(e.todo) {
			matches = append(matches, e)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matches, func(a, b entry) int {
		if c := b.todo.CreatedAt.Compare(a.todo.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	total := len(matches)
	page := make([]*models.Todo, 0, opts.Limit)
	for i := opts.Offset; i < total && len(page) < opts.Limit; i++ {
		page = append(page, matches[i].todo.Clone())
	}
	return page, total, nil
}

// Update applies patch under the write lock.
func (r *TodoRepository) Update(_ context.Context, ownerID, id uuid.UUID, patch models.TodoPatch) (*models.Todo, error) {
	r.mu.Lock()
	e, err := r.lookup(ownerID, id)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if patch.IsEmpty() {
		r.mu.Unlock()
		return e.todo.Clone(), nil
	}
	e.todo.Apply(patch, r.now())
	updated := e.todo.Clone()
	r.mu.Unlock()

	r.broker.Publish(models.NewChange(models.ChangeUpdated, ownerID, id, updated))
	return updated, nil
}

// Delete removes the todo if ownerID owns it.
func (r *TodoRepository) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	if _, err := r.lookup(ownerID, id); err != nil {
		r.mu.Unlock()
		return err
	}
	delete(r.todos, id)
	r.mu.Unlock()

	r.broker.Publish(models.NewChange(models.ChangeDeleted, ownerID, id, nil))
	return nil
}

// Watch streams this repository's writes for ownerID.
func (r *TodoRepository) Watch(ctx context.Context, ownerID uuid.UUID) (<-chan models.Change, error) {
	return r.broker.Watch(ctx, ownerID)
}

// lookup must be called with r.mu held.
func (r *TodoRepository) lookup(ownerID, id uuid.UUID) (entry, error) {
	e, ok := r.todos[id]
	if !ok {
		return entry{}, tododomain.ErrTodoNotFound
	}
	if e.todo.OwnerID != ownerID {
		return entry{}, tododomain.ErrTodoNotOwned
	}
	return e, nil
}
