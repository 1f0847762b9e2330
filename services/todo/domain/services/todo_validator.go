// Package services contains stateless domain services for the todo bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/todos/services/todo/domain/models"
	"github.com/ghuser/todos/services/todo/domain/repositories"
)

const (
	// DefaultPageSize is used when a list query does not set a limit.
	DefaultPageSize = 10
	// MaxPageSize bounds the limit of a single list query.
	MaxPageSize = 100
)

// ValidateText enforces business rules for TodoText beyond the structural
// constraints enforced by the TodoText constructor.
//
// Business rules:
//   - No NUL bytes (PostgreSQL text columns reject them)
func ValidateText(text models.TodoText) error {
	if strings.ContainsRune(text.String(), 0) {
		return fmt.Errorf("todo text must not contain NUL characters")
	}
	return nil
}

// ValidateTodoForCreation performs cross-field validation on a fully-constructed
// Todo aggregate before it is persisted.
func ValidateTodoForCreation(todo *models.Todo) error {
	if todo == nil {
		return fmt.Errorf("todo cannot be nil")
	}

	if err := ValidateText(todo.Text); err != nil {
		return fmt.Errorf("invalid text: %w", err)
	}

	if todo.OwnerID == uuid.Nil {
		return fmt.Errorf("owner_id must be set")
	}

	if todo.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}

	return nil
}

// Paginate converts a 1-based page and a page size into store QueryOpts.
// Both must already be explicit; callers substitute their defaults first.
// An offset that would overflow saturates, so any page past the end is empty.
func Paginate(page, limit int) (repositories.QueryOpts, error) {
	if page < 1 {
		return repositories.QueryOpts{}, fmt.Errorf("page must be at least 1")
	}
	if limit < 1 || limit > MaxPageSize {
		return repositories.QueryOpts{}, fmt.Errorf("limit must be between 1 and %d", MaxPageSize)
	}
	maxOffset := math.MaxInt - limit
	if page-1 > maxOffset/limit {
		return repositories.QueryOpts{Limit: limit, Offset: maxOffset}, nil
	}
	return repositories.QueryOpts{Limit: limit, Offset: (page - 1) * limit}, nil
}
