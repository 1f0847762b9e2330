package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ghuser/todos/pkg/database"
	"github.com/ghuser/todos/pkg/events"
	tododomain "github.com/ghuser/todos/services/todo/domain"
	domainevents "github.com/ghuser/todos/services/todo/domain/events"
	"github.com/ghuser/todos/services/todo/domain/models"
	"github.com/ghuser/todos/services/todo/domain/repositories"
)

const todoColumns = "id, owner_id, text, completed, created_at, updated_at"

var _ repositories.TodoRepository = (*TodoRepository)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TodoRepository implements repositories.TodoRepository against PostgreSQL.
type TodoRepository struct {
	db  *database.Database
	bus *events.EventBus
	now func() time.Time
}

// NewTodoRepository returns a TodoRepository backed by the given connection pool
// and event bus. The bus is used to publish todo events in the same transaction
// as each write; a nil bus disables publishing.
func NewTodoRepository(database *database.Database, bus *events.EventBus) *TodoRepository {
	return &TodoRepository{db: database, bus: bus, now: time.Now}
}

// Save persists a new Todo and publishes a todo.created event within the same transaction.
func (r *TodoRepository) Save(ctx context.Context, todo *models.Todo) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO todos (`+todoColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
			todo.ID, todo.OwnerID, todo.Text.String(), todo.Completed, todo.CreatedAt, todo.UpdatedAt,
		)
		if err != nil {
			if database.IsCode(err, database.CodeUniqueViolation) {
				return fmt.Errorf("insert todo: duplicate id %s: %w", todo.ID, err)
			}
			return fmt.Errorf("insert todo: %w", err)
		}
		return r.publish(ctx, tx, domainevents.TopicTodoCreated, todo.OwnerID, todo.ID, todo, todo.CreatedAt)
	})
}

// GetByID retrieves a Todo by ID. Returns ErrTodoNotFound if absent and
// ErrTodoNotOwned if it belongs to another owner.
func (r *TodoRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Todo, error) {
	todo, err := scanTodo(r.db.DB().QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tododomain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("query todo: %w", err)
	}
	if todo.OwnerID != ownerID {
		return nil, tododomain.ErrTodoNotOwned
	}
	return todo, nil
}

// FindByOwnerID retrieves one page of matching todos and the total match count.
// The two reads are independent and run concurrently.
func (r *TodoRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, filter repositories.TodoFilter, opts repositories.QueryOpts) ([]*models.Todo, int, error) {
	where, args := whereClause(ownerID, filter)
	pageArgs := append(slices.Clone(args), opts.Limit, opts.Offset)

	var (
		todos []*models.Todo
		total int
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q := `SELECT ` + todoColumns + ` FROM todos ` + where +
			fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		rows, err := r.db.DB().QueryContext(gctx, q, pageArgs...)
		if err != nil {
			return fmt.Errorf("query todos: %w", err)
		}
		defer rows.Close() //nolint:errcheck

		todos = make([]*models.Todo, 0, opts.Limit)
		for rows.Next() {
			todo, err := scanTodo(rows)
			if err != nil {
				return fmt.Errorf("scan todo: %w", err)
			}
			todos = append(todos, todo)
		}
		return rows.Err()
	})

	g.Go(func() error {
		if err := r.db.DB().QueryRowContext(gctx, `SELECT count(*) FROM todos `+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("count todos: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return todos, total, nil
}

// Update applies patch in a single UPDATE and publishes todo.updated in the same transaction.
func (r *TodoRepository) Update(ctx context.Context, ownerID, id uuid.UUID, patch models.TodoPatch) (*models.Todo, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, ownerID, id)
	}

	var text sql.NullString
	if patch.Text != nil {
		text = sql.NullString{String: patch.Text.String(), Valid: true}
	}
	var completed sql.NullBool
	if patch.Completed != nil {
		completed = sql.NullBool{Bool: *patch.Completed, Valid: true}
	}

	var updated *models.Todo
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		todo, err := scanTodo(tx.QueryRowContext(ctx, `
			UPDATE todos
			SET text = COALESCE($3, text),
			    completed = COALESCE($4, completed),
			    updated_at = $5
			WHERE id = $1 AND owner_id = $2
			RETURNING `+todoColumns,
			id, ownerID, text, completed, r.now().UTC(),
		))
		if errors.Is(err, sql.ErrNoRows) {
			return missing(ctx, tx, id)
		}
		if err != nil {
			return fmt.Errorf("update todo: %w", err)
		}
		updated = todo
		return r.publish(ctx, tx, domainevents.TopicTodoUpdated, ownerID, id, todo, todo.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a todo and publishes todo.deleted in the same transaction.
func (r *TodoRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID)
		if err != nil {
			return fmt.Errorf("delete todo: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete todo: %w", err)
		}
		if n == 0 {
			return missing(ctx, tx, id)
		}
		return r.publish(ctx, tx, domainevents.TopicTodoDeleted, ownerID, id, nil, r.now())
	})
}

// missing explains why an owner-scoped write matched no row.
func missing(ctx context.Context, q querier, id uuid.UUID) error {
	var owner uuid.UUID
	err := q.QueryRowContext(ctx, `SELECT owner_id FROM todos WHERE id = $1`, id).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return tododomain.ErrTodoNotFound
	case err != nil:
		return fmt.Errorf("query todo owner: %w", err)
	default:
		return tododomain.ErrTodoNotOwned
	}
}

func (r *TodoRepository) publish(ctx context.Context, tx *sql.Tx, topic string, ownerID, todoID uuid.UUID, todo *models.Todo, at time.Time) error {
	if r.bus == nil {
		return nil
	}
	event := domainevents.NewTodoEvent(ownerID, todoID, todo, at)
	msg, err := events.NewMessage(event.EventID.String(), event)
	if err != nil {
		return err
	}
	msg.Metadata.Set("event_version", "1")
	return r.bus.PublishTx(ctx, tx, topic, msg)
}

// whereClause builds the owner-scoped filter shared by the page and count queries.
func whereClause(ownerID uuid.UUID, filter repositories.TodoFilter) (string, []any) {
	conds := []string{"owner_id = $1"}
	args := []any{ownerID}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		conds = append(conds, fmt.Sprintf(`text ILIKE $%d ESCAPE '\'`, len(args)))
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (*models.Todo, error) {
	var (
		t    models.Todo
		text string
	)
	if err := s.Scan(&t.ID, &t.OwnerID, &text, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Text = models.TodoText(text)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}
