package logging

import (
	"errors"
	"testing"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud", Format: "json"}); err == nil {
		t.Fatal("expected invalid level to be rejected")
	}
}

func TestNewDefaultsToInfoLevel(t *testing.T) {
	logger, err := New(Config{Format: "console"})
	if err != nil {
		t.Fatalf("expected logger, got error: %v", err)
	}
	if logger.Desugar().Core().Enabled(-1) {
		t.Fatal("expected debug level to be disabled by default")
	}
	if !logger.Desugar().Core().Enabled(0) {
		t.Fatal("expected info level to be enabled by default")
	}
}

func TestWithErrorIgnoresNil(t *testing.T) {
	logger := NewNop()
	if logger.WithError(nil) != logger {
		t.Fatal("expected nil error to return the same logger")
	}
	if logger.WithError(errors.New("boom")) == logger {
		t.Fatal("expected non-nil error to derive a new logger")
	}
}
