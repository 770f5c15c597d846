package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/miffy/internal/models"
)

func TestMedicationLogUpsertUpdatesExistingSlot(t *testing.T) {
	database := openTestDatabase(t, filepath.Join(t.TempDir(), "miffy-upsert.db"))
	user := createTestUser(t, database, "owner@miffy.local")
	medication := createTestMedication(t, database, user.ID, "Morning Vitamin")
	repo := NewMedicationLogRepository(database)
	ctx := context.Background()

	takenAt := time.Date(2026, 3, 14, 8, 2, 0, 0, time.UTC)
	taken := models.MedicationLog{
		UserID:        user.ID,
		MedicationID:  medication.ID,
		ScheduledTime: "08:00:00",
		ScheduledDate: "2026-03-14",
		TakenAt:       &takenAt,
	}
	if err := repo.Upsert(ctx, &taken); err != nil {
		t.Fatalf("insert log: %v", err)
	}
	if taken.ID == 0 {
		t.Fatal("expected stored log id after upsert")
	}

	skipped := models.MedicationLog{
		UserID:        user.ID,
		MedicationID:  medication.ID,
		ScheduledTime: "08:00:00",
		ScheduledDate: "2026-03-14",
		Skipped:       true,
	}
	if err := repo.Upsert(ctx, &skipped); err != nil {
		t.Fatalf("upsert log: %v", err)
	}
	if skipped.ID != taken.ID {
		t.Fatalf("expected upsert to keep row id %d, got %d", taken.ID, skipped.ID)
	}
	if skipped.TakenAt != nil || !skipped.Skipped {
		t.Fatalf("expected stored row to be skipped only, got %+v", skipped)
	}

	logs, err := repo.ListByUserDate(user.ID, "2026-03-14")
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected one row per slot, got %d", len(logs))
	}
}

func TestMedicationLogConflictFallbackWritesFullFieldSet(t *testing.T) {
	database := openTestDatabase(t, filepath.Join(t.TempDir(), "miffy-fallback.db"))
	user := createTestUser(t, database, "owner@miffy.local")
	medication := createTestMedication(t, database, user.ID, "Iron")
	repo := NewMedicationLogRepository(database)
	ctx := context.Background()

	coupleID := "couple-1"
	takenAt := time.Date(2026, 3, 14, 20, 1, 0, 0, time.UTC)
	existing := models.MedicationLog{
		UserID:        user.ID,
		CoupleID:      &coupleID,
		MedicationID:  medication.ID,
		ScheduledTime: "20:00:00",
		ScheduledDate: "2026-03-14",
		TakenAt:       &takenAt,
		Notes:         "with food",
	}
	if err := database.Create(&existing).Error; err != nil {
		t.Fatalf("seed log: %v", err)
	}

	cleared := models.MedicationLog{
		UserID:        user.ID,
		MedicationID:  medication.ID,
		ScheduledTime: "20:00:00",
		ScheduledDate: "2026-03-14",
		UpdatedAt:     time.Now().UTC(),
	}
	if err := repo.updateSlot(ctx, &cleared); err != nil {
		t.Fatalf("fallback update: %v", err)
	}

	stored, found, err := repo.FindBySlot(ctx, user.ID, medication.ID, "20:00:00", "2026-03-14")
	if err != nil || !found {
		t.Fatalf("reload log: found=%v err=%v", found, err)
	}
	if stored.TakenAt != nil || stored.Skipped || stored.Notes != "" || stored.CoupleID != nil {
		t.Fatalf("expected fallback to overwrite every field, got %+v", stored)
	}
}

func TestMedicationLogUniqueIndexRejectsDuplicateSlot(t *testing.T) {
	database := openTestDatabase(t, filepath.Join(t.TempDir(), "miffy-unique.db"))
	user := createTestUser(t, database, "owner@miffy.local")
	medication := createTestMedication(t, database, user.ID, "Iron")

	first := models.MedicationLog{UserID: user.ID, MedicationID: medication.ID, ScheduledTime: "08:00:00", ScheduledDate: "2026-03-14", Skipped: true}
	if err := database.Create(&first).Error; err != nil {
		t.Fatalf("create first log: %v", err)
	}
	second := models.MedicationLog{UserID: user.ID, MedicationID: medication.ID, ScheduledTime: "08:00:00", ScheduledDate: "2026-03-14"}
	err := database.Create(&second).Error
	if err == nil {
		t.Fatal("expected duplicate slot insert to fail")
	}
	if !isUniqueConstraintError(err) {
		t.Fatalf("expected unique constraint error, got %v", err)
	}
}

func TestMedicationDeleteCascadeRemovesLogs(t *testing.T) {
	database := openTestDatabase(t, filepath.Join(t.TempDir(), "miffy-cascade.db"))
	owner := createTestUser(t, database, "owner@miffy.local")
	other := createTestUser(t, database, "other@miffy.local")
	medication := createTestMedication(t, database, owner.ID, "Iron")
	medications := NewMedicationRepository(database)
	logs := NewMedicationLogRepository(database)

	entry := models.MedicationLog{UserID: owner.ID, MedicationID: medication.ID, ScheduledTime: "08:00:00", ScheduledDate: "2026-03-14", Skipped: true}
	if err := logs.Upsert(context.Background(), &entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	deleted, err := medications.DeleteCascade(other.ID, medication.ID)
	if err != nil {
		t.Fatalf("delete as other user: %v", err)
	}
	if deleted {
		t.Fatal("expected delete to be scoped by user")
	}

	deleted, err = medications.DeleteCascade(owner.ID, medication.ID)
	if err != nil || !deleted {
		t.Fatalf("expected owner delete to succeed, deleted=%v err=%v", deleted, err)
	}
	remaining, err := logs.ListByUserDate(owner.ID, "2026-03-14")
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected logs to be deleted with medication, got %d", len(remaining))
	}
}

func TestMedicationUpdateReplacesMutableFields(t *testing.T) {
	database := openTestDatabase(t, filepath.Join(t.TempDir(), "miffy-update.db"))
	owner := createTestUser(t, database, "owner@miffy.local")
	medication := createTestMedication(t, database, owner.ID, "Iron")
	repo := NewMedicationRepository(database)

	medication.Name = "Iron + C"
	medication.Times = []string{"09:30"}
	medication.Notes = ""
	updated, err := repo.Update(&medication)
	if err != nil || !updated {
		t.Fatalf("update medication: updated=%v err=%v", updated, err)
	}

	stored, found, err := repo.FindByIDForUser(owner.ID, medication.ID)
	if err != nil || !found {
		t.Fatalf("reload medication: found=%v err=%v", found, err)
	}
	if stored.Name != "Iron + C" || len(stored.Times) != 1 || stored.Times[0] != "09:30" {
		t.Fatalf("expected replaced fields, got %+v", stored)
	}
}
