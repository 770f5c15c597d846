package db

import (
	"errors"

	"github.com/terraincognita07/miffy/internal/models"
	"gorm.io/gorm"
)

type SleepRepository struct {
	database *gorm.DB
}

func NewSleepRepository(database *gorm.DB) *SleepRepository {
	return &SleepRepository{database: database}
}

func (repo *SleepRepository) FindByUserDate(userID uint, date string) (models.SleepEntry, bool, error) {
	var entry models.SleepEntry
	err := repo.database.Where("user_id = ? AND date = ?", userID, date).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SleepEntry{}, false, nil
	}
	if err != nil {
		return models.SleepEntry{}, false, err
	}
	return entry, true, nil
}

func (repo *SleepRepository) Create(entry *models.SleepEntry) error {
	return repo.database.Create(entry).Error
}

func (repo *SleepRepository) Save(entry *models.SleepEntry) error {
	return repo.database.Save(entry).Error
}

func (repo *SleepRepository) DeleteForUser(userID uint, entryID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", entryID, userID).Delete(&models.SleepEntry{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *SleepRepository) ListRecentByUser(userID uint, limit int) ([]models.SleepEntry, error) {
	entries := make([]models.SleepEntry, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
