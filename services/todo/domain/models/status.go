package models

import "fmt"

// Status selects todos by completion state in list queries.
type Status string

const (
	StatusAll        Status = ""
	StatusCompleted  Status = "completed"
	StatusIncomplete Status = "incomplete"
)

// ParseStatus accepts "", "completed" or "incomplete".
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAll, StatusCompleted, StatusIncomplete:
		return Status(s), nil
	default:
		return "", fmt.Errorf("status must be %q or %q", StatusCompleted, StatusIncomplete)
	}
}

// Completed returns the completion value the status filters on, or nil for StatusAll.
func (s Status) Completed() *bool {
	switch s {
	case StatusCompleted:
		v := true
		return &v
	case StatusIncomplete:
		v := false
		return &v
	default:
		return nil
	}
}
