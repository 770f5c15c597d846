package db

import (
	"time"

	"github.com/terraincognita07/miffy/internal/models"
	"gorm.io/gorm"
)

type MoodRepository struct {
	database *gorm.DB
}

func NewMoodRepository(database *gorm.DB) *MoodRepository {
	return &MoodRepository{database: database}
}

func (repo *MoodRepository) Create(entry *models.MoodEntry) error {
	return repo.database.Create(entry).Error
}

func (repo *MoodRepository) ListRecentByUser(userID uint, limit int) ([]models.MoodEntry, error) {
	entries := make([]models.MoodEntry, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *MoodRepository) LatestByUserSince(userID uint, since time.Time) (models.MoodEntry, bool, error) {
	entry := models.MoodEntry{}
	result := repo.database.
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.MoodEntry{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.MoodEntry{}, false, nil
	}
	return entry, true, nil
}

func (repo *MoodRepository) ListRecentByCouple(coupleID string, limit int) ([]models.MoodEntry, error) {
	entries := make([]models.MoodEntry, 0)
	if err := repo.database.
		Select("id", "user_id", "couple_id", "mood_id", "score", "note", "created_at").
		Where("couple_id = ?", coupleID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
