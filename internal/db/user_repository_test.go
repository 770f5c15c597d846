package db

import (
	"path/filepath"
	"testing"
	"time"
)

func TestConsumeLoginNonceIsOneTime(t *testing.T) {
	database := openTestDatabase(t, filepath.Join(t.TempDir(), "miffy-nonce.db"))
	user := createTestUser(t, database, "owner@miffy.local")
	repo := NewUserRepository(database)

	if err := repo.UpdateLoginNonceHash(user.ID, "hash-1"); err != nil {
		t.Fatalf("store nonce: %v", err)
	}

	consumed, err := repo.ConsumeLoginNonce(user.ID, "hash-1", time.Now().UTC())
	if err != nil || !consumed {
		t.Fatalf("expected first consume to succeed, consumed=%v err=%v", consumed, err)
	}
	consumed, err = repo.ConsumeLoginNonce(user.ID, "hash-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if consumed {
		t.Fatal("expected second consume to fail")
	}

	stored, err := repo.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.LastSignInAt == nil {
		t.Fatal("expected last sign-in time to be recorded")
	}
}

func TestConsumeLoginNonceRejectsEmptyHash(t *testing.T) {
	database := openTestDatabase(t, filepath.Join(t.TempDir(), "miffy-empty-nonce.db"))
	user := createTestUser(t, database, "owner@miffy.local")

	consumed, err := NewUserRepository(database).ConsumeLoginNonce(user.ID, "", time.Now().UTC())
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if consumed {
		t.Fatal("expected empty nonce hash to never be consumable")
	}
}
