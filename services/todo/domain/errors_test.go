package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Messages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrTodoNotFound, "todo not found"},
		{ErrTodoNotOwned, "todo not found: owned by another user"},
		{ErrInvalidTodoText, "invalid todo text"},
		{ErrInvalidQuery, "invalid list query"},
		{ErrChangesUnsupported, "change notifications not supported"},
	}
	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Fatalf("unexpected message: got %q, want %q", tt.err.Error(), tt.want)
		}
	}
}

func TestErrTodoNotOwned_IsNotFound(t *testing.T) {
	if !errors.Is(ErrTodoNotOwned, ErrTodoNotFound) {
		t.Fatal("ErrTodoNotOwned must match ErrTodoNotFound")
	}
	if errors.Is(ErrTodoNotFound, ErrTodoNotOwned) {
		t.Fatal("ErrTodoNotFound must not match ErrTodoNotOwned")
	}
}

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	wrapped := fmt.Errorf("get todo: %w", ErrTodoNotOwned)
	if !errors.Is(wrapped, ErrTodoNotFound) {
		t.Fatal("errors.Is must match wrapped ErrTodoNotOwned as ErrTodoNotFound")
	}

	wrapped2 := fmt.Errorf("%w: %w", ErrInvalidTodoText, errors.New("too long"))
	if !errors.Is(wrapped2, ErrInvalidTodoText) {
		t.Fatal("errors.Is must match double-wrapped ErrInvalidTodoText")
	}
}
