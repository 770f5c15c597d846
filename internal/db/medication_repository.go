package db

import (
	"errors"

	"github.com/terraincognita07/miffy/internal/models"
	"gorm.io/gorm"
)

const medicationListLimit = 100

type MedicationRepository struct {
	database *gorm.DB
}

func NewMedicationRepository(database *gorm.DB) *MedicationRepository {
	return &MedicationRepository{database: database}
}

func (repo *MedicationRepository) ListByUser(userID uint) ([]models.Medication, error) {
	medications := make([]models.Medication, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Limit(medicationListLimit).
		Find(&medications).Error; err != nil {
		return nil, err
	}
	return medications, nil
}

func (repo *MedicationRepository) FindByIDForUser(userID uint, medicationID string) (models.Medication, bool, error) {
	var medication models.Medication
	err := repo.database.Where("id = ? AND user_id = ?", medicationID, userID).First(&medication).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Medication{}, false, nil
	}
	if err != nil {
		return models.Medication{}, false, err
	}
	return medication, true, nil
}

func (repo *MedicationRepository) Create(medication *models.Medication) error {
	return repo.database.Create(medication).Error
}

// Update replaces the mutable fields of a medication owned by the user.
func (repo *MedicationRepository) Update(medication *models.Medication) (bool, error) {
	result := repo.database.
		Model(medication).
		Where("user_id = ?", medication.UserID).
		Select("couple_id", "name", "dosage", "frequency", "times", "color", "notes", "updated_at").
		Updates(medication)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteCascade removes the medication and all of its intake logs.
func (repo *MedicationRepository) DeleteCascade(userID uint, medicationID string) (bool, error) {
	deleted := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("medication_id = ? AND user_id = ?", medicationID, userID).Delete(&models.MedicationLog{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", medicationID, userID).Delete(&models.Medication{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}
