package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the todo domain. Use errors.Is() to check these.
var (
	// ErrTodoNotFound indicates the requested todo does not exist for the caller.
	ErrTodoNotFound = errors.New("todo not found")

	// ErrTodoNotOwned indicates the todo exists but belongs to another user.
	// It wraps ErrTodoNotFound so callers outside the domain cannot tell the two apart.
	ErrTodoNotOwned = fmt.Errorf("%w: owned by another user", ErrTodoNotFound)

	// ErrInvalidTodoText indicates the todo text violates domain constraints.
	ErrInvalidTodoText = errors.New("invalid todo text")

	// ErrInvalidQuery indicates list parameters (page, limit, status) are out of range.
	ErrInvalidQuery = errors.New("invalid list query")

	// ErrChangesUnsupported indicates the configured store cannot stream changes.
	ErrChangesUnsupported = errors.New("change notifications not supported")
)
