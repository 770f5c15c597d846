package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/miffy/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const medicationLogListLimit = 500

var medicationLogSlotColumns = []clause.Column{
	{Name: "medication_id"},
	{Name: "scheduled_time"},
	{Name: "scheduled_date"},
	{Name: "user_id"},
}

type MedicationLogRepository struct {
	database *gorm.DB
}

func NewMedicationLogRepository(database *gorm.DB) *MedicationLogRepository {
	return &MedicationLogRepository{database: database}
}

func (repo *MedicationLogRepository) ListByUserDate(userID uint, scheduledDate string) ([]models.MedicationLog, error) {
	logs := make([]models.MedicationLog, 0)
	if err := repo.database.
		Where("user_id = ? AND scheduled_date = ?", userID, scheduledDate).
		Order("updated_at ASC, id ASC").
		Limit(medicationLogListLimit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (repo *MedicationLogRepository) FindBySlot(ctx context.Context, userID uint, medicationID string, scheduledTime string, scheduledDate string) (models.MedicationLog, bool, error) {
	entry := models.MedicationLog{}
	result := repo.database.WithContext(ctx).
		Where("medication_id = ? AND scheduled_time = ? AND scheduled_date = ? AND user_id = ?", medicationID, scheduledTime, scheduledDate, userID).
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.MedicationLog{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.MedicationLog{}, false, nil
	}
	return entry, true, nil
}

// Upsert writes entry keyed on (medication_id, scheduled_time, scheduled_date,
// user_id). A conflicting row is overwritten with the same field values the
// insert would have written. On return entry holds the stored row.
func (repo *MedicationLogRepository) Upsert(ctx context.Context, entry *models.MedicationLog) error {
	now := time.Now().UTC()
	entry.ID = 0
	entry.CreatedAt = now
	entry.UpdatedAt = now

	err := repo.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   medicationLogSlotColumns,
			DoUpdates: clause.AssignmentColumns([]string{"couple_id", "taken_at", "skipped", "notes", "updated_at"}),
		}).
		Create(entry).Error
	if err != nil {
		if !isUniqueConstraintError(err) {
			return fmt.Errorf("upsert medication log: %w", err)
		}
		if err := repo.updateSlot(ctx, entry); err != nil {
			return err
		}
	}

	stored, found, err := repo.FindBySlot(ctx, entry.UserID, entry.MedicationID, entry.ScheduledTime, entry.ScheduledDate)
	if err != nil {
		return fmt.Errorf("reload medication log: %w", err)
	}
	if !found {
		return fmt.Errorf("reload medication log: %w", gorm.ErrRecordNotFound)
	}
	*entry = stored
	return nil
}

// updateSlot is the conflict fallback: it rewrites the full field set of the
// row that owns the slot.
func (repo *MedicationLogRepository) updateSlot(ctx context.Context, entry *models.MedicationLog) error {
	result := repo.database.WithContext(ctx).
		Model(&models.MedicationLog{}).
		Where("medication_id = ? AND scheduled_time = ? AND scheduled_date = ? AND user_id = ?",
			entry.MedicationID, entry.ScheduledTime, entry.ScheduledDate, entry.UserID).
		Updates(map[string]any{
			"couple_id":  entry.CoupleID,
			"taken_at":   entry.TakenAt,
			"skipped":    entry.Skipped,
			"notes":      entry.Notes,
			"updated_at": entry.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update medication log after conflict: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update medication log after conflict: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToUpper(err.Error()), "UNIQUE CONSTRAINT FAILED")
}
