package services

import (
	"errors"
	"testing"
)

func TestNormalizeAuthEmail(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "lowercases and trims", raw: "  Alice@Example.COM ", want: "alice@example.com"},
		{name: "empty", raw: "   ", want: ""},
		{name: "missing at", raw: "alice.example.com", want: ""},
		{name: "display name form rejected", raw: "Alice <alice@example.com>", want: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := NormalizeAuthEmail(test.raw); got != test.want {
				t.Fatalf("NormalizeAuthEmail(%q) = %q, want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestNormalizeSignInEmailRejectsInvalid(t *testing.T) {
	if _, err := NormalizeSignInEmail("nope"); !errors.Is(err, ErrAuthEmailInvalid) {
		t.Fatalf("expected ErrAuthEmailInvalid, got %v", err)
	}
	email, err := NormalizeSignInEmail("Bob@Example.com")
	if err != nil || email != "bob@example.com" {
		t.Fatalf("expected normalized email, got %q (%v)", email, err)
	}
}

func TestDisplayNameFromEmail(t *testing.T) {
	if got := DisplayNameFromEmail("sam.k@example.com"); got != "sam.k" {
		t.Fatalf("expected local part, got %q", got)
	}
}
