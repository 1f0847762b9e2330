package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	u := NewUser("  Alice@Example.COM ", "$argon2id$hash")
	if u.ID == uuid.Nil {
		t.Fatal("expected generated ID")
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := map[string]string{
		"bob@example.com":     "bob@example.com",
		"BOB@Example.com":     "bob@example.com",
		"\tbob@example.com\n": "bob@example.com",
	}
	for in, want := range tests {
		if got := NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
