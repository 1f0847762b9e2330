package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	pkgcache "github.com/ghuser/todos/pkg/cache"
	"github.com/ghuser/todos/pkg/logger"
	"github.com/ghuser/todos/pkg/telemetry"
	tododomain "github.com/ghuser/todos/services/todo/domain"
	"github.com/ghuser/todos/services/todo/domain/models"
	"github.com/ghuser/todos/services/todo/domain/repositories"
	domainsvcs "github.com/ghuser/todos/services/todo/domain/services"
)

// TodoCache is the read-model cache consulted by GetByID. *pkgcache.TodoCache implements it.
type TodoCache interface {
	Get(ctx context.Context, ownerID, todoID uuid.UUID) (*pkgcache.CachedTodo, error)
	Set(ctx context.Context, todo *pkgcache.CachedTodo) error
	Delete(ctx context.Context, ownerID, todoID uuid.UUID) error
}

// TodoServiceOptions holds the optional collaborators of a TodoService.
type TodoServiceOptions struct {
	Cache           TodoCache                   // nil disables caching
	Notifier        repositories.ChangeNotifier // nil makes Watch return ErrChangesUnsupported
	DefaultPageSize int                         // zero selects domainsvcs.DefaultPageSize
}

// ListQuery carries list parameters as received from the client.
// Zero Page and Limit select the defaults.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// TodoPage is one page of a list result.
type TodoPage struct {
	Items []*models.Todo
	Total int
	Page  int
	Limit int
}

// UpdateInput is a partial update as received from the client. Nil fields are left unchanged.
type UpdateInput struct {
	Text      *string
	Completed *bool
}

// TodoService orchestrates the owner-scoped todo use cases.
// Event publishing is handled by the repository layer (outbox pattern).
// Reads by ID are served from Redis cache when available.
type TodoService struct {
	repo     repositories.TodoRepository
	cache    TodoCache
	notifier repositories.ChangeNotifier
	pageSize int
	log      logger.Logger
	ops      metric.Int64Counter
}

// NewTodoService returns a TodoService wired with the given repository.
func NewTodoService(repo repositories.TodoRepository, log logger.Logger, opts TodoServiceOptions) *TodoService {
	ops, err := telemetry.NewOperationCounter()
	if err != nil {
		log.Warn("todo metrics disabled", "error", err)
		ops = noop.Int64Counter{}
	}

	pageSize := opts.DefaultPageSize
	if pageSize <= 0 || pageSize > domainsvcs.MaxPageSize {
		pageSize = domainsvcs.DefaultPageSize
	}

	return &TodoService{
		repo:     repo,
		cache:    opts.Cache,
		notifier: opts.Notifier,
		pageSize: pageSize,
		log:      log,
		ops:      ops,
	}
}

// List returns one page of the owner's todos, newest first, plus the total match count.
func (s *TodoService) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (_ *TodoPage, err error) {
	defer func() { s.record(ctx, "list", err) }()

	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = s.pageSize
	}
	opts, err := domainsvcs.Paginate(q.Page, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tododomain.ErrInvalidQuery, err)
	}
	status, err := models.ParseStatus(q.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tododomain.ErrInvalidQuery, err)
	}

	filter := repositories.TodoFilter{
		Search:    strings.TrimSpace(q.Search),
		Completed: status.Completed(),
	}
	todos, total, err := s.repo.FindByOwnerID(ctx, ownerID, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return &TodoPage{Items: todos, Total: total, Page: q.Page, Limit: opts.Limit}, nil
}

// Create validates and persists a todo owned by ownerID. The repository publishes todo.created.
func (s *TodoService) Create(ctx context.Context, ownerID uuid.UUID, text string) (_ *models.Todo, err error) {
	defer func() { s.record(ctx, "create", err) }()

	todoText, err := models.NewTodoText(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tododomain.ErrInvalidTodoText, err)
	}

	todo := models.NewTodo(ownerID, todoText)
	if err := domainsvcs.ValidateTodoForCreation(todo); err != nil {
		return nil, fmt.Errorf("%w: %w", tododomain.ErrInvalidTodoText, err)
	}

	if err := s.repo.Save(ctx, todo); err != nil {
		return nil, fmt.Errorf("save todo: %w", err)
	}
	return todo, nil
}

// GetByID retrieves a todo using a read-through cache pattern:
//  1. Check Redis cache first (keys are owner-scoped, so foreign IDs always miss).
//  2. On cache miss (or cache error), query the repository.
//  3. Warm the cache with the repository result.
func (s *TodoService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (_ *models.Todo, err error) {
	defer func() { s.record(ctx, "get", err) }()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, ownerID, id)
		switch {
		case err == nil:
			return fromCached(cached), nil
		case !errors.Is(err, redis.Nil):
			s.log.WarnContext(ctx, "todo cache read failed", "todo_id", id, "error", err)
		}
	}

	todo, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}

	s.cacheSet(ctx, todo)
	return todo, nil
}

// Update applies the present fields of in to the owner's todo and returns the result.
// Text, when present, must be non-empty after trimming.
func (s *TodoService) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (_ *models.Todo, err error) {
	defer func() { s.record(ctx, "update", err) }()

	patch := models.TodoPatch{Completed: in.Completed}
	if in.Text != nil {
		text, err := models.NewTodoText(*in.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", tododomain.ErrInvalidTodoText, err)
		}
		if err := domainsvcs.ValidateText(text); err != nil {
			return nil, fmt.Errorf("%w: %w", tododomain.ErrInvalidTodoText, err)
		}
		patch.Text = &text
	}

	todo, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}

	s.cacheSet(ctx, todo)
	return todo, nil
}

// Delete removes the owner's todo. Returns ErrTodoNotFound if no matching todo exists.
func (s *TodoService) Delete(ctx context.Context, ownerID, id uuid.UUID) (err error) {
	defer func() { s.record(ctx, "delete", err) }()

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, ownerID, id); err != nil {
			s.log.WarnContext(ctx, "todo cache invalidation failed", "todo_id", id, "error", err)
		}
	}
	return nil
}

// Watch streams changes to the owner's todos until ctx is done.
func (s *TodoService) Watch(ctx context.Context, ownerID uuid.UUID) (_ <-chan models.Change, err error) {
	defer func() { s.record(ctx, "watch", err) }()

	if s.notifier == nil {
		return nil, tododomain.ErrChangesUnsupported
	}
	ch, err := s.notifier.Watch(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("watch todos: %w", err)
	}
	return ch, nil
}

func (s *TodoService) cacheSet(ctx context.Context, todo *models.Todo) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, toCached(todo)); err != nil {
		s.log.WarnContext(ctx, "todo cache write failed", "todo_id", todo.ID, "error", err)
	}
}

func (s *TodoService) record(ctx context.Context, op string, err error) {
	s.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome(err)),
	))
}

// outcome separates caller mistakes from faults so error-rate alerts only
// fire on the latter.
func outcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeOK
	case errors.Is(err, tododomain.ErrTodoNotFound):
		return telemetry.OutcomeNotFound
	case errors.Is(err, tododomain.ErrInvalidTodoText),
		errors.Is(err, tododomain.ErrInvalidQuery),
		errors.Is(err, tododomain.ErrChangesUnsupported):
		return telemetry.OutcomeRejected
	default:
		return telemetry.OutcomeError
	}
}

func toCached(t *models.Todo) *pkgcache.CachedTodo {
	return &pkgcache.CachedTodo{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Text:      t.Text.String(),
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func fromCached(c *pkgcache.CachedTodo) *models.Todo {
	return &models.Todo{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Text:      models.TodoText(c.Text),
		Completed: c.Completed,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
