package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TodoText is a value object holding the trimmed body of a todo.
// Encapsulates validation rules: 1 <= runes(trimmed) <= 1000.
type TodoText string

const (
	minTodoTextLength = 1
	// MaxTodoTextLength is the longest text a todo may hold, counted in characters.
	MaxTodoTextLength = 1000
)

// NewTodoText trims surrounding whitespace from s and returns a valid TodoText,
// or an error if the result is empty or too long.
func NewTodoText(s string) (TodoText, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < minTodoTextLength {
		return "", fmt.Errorf("todo text is required")
	}
	if n > MaxTodoTextLength {
		return "", fmt.Errorf("todo text must not exceed %d characters", MaxTodoTextLength)
	}
	return TodoText(s), nil
}

// String returns the underlying string value.
func (t TodoText) String() string {
	return string(t)
}
