package db

import (
	"errors"

	"github.com/terraincognita07/miffy/internal/models"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	database *gorm.DB
}

func NewActivityRepository(database *gorm.DB) *ActivityRepository {
	return &ActivityRepository{database: database}
}

func (repo *ActivityRepository) Create(activity *models.Activity) error {
	return repo.database.Create(activity).Error
}

func (repo *ActivityRepository) Save(activity *models.Activity) error {
	return repo.database.Save(activity).Error
}

func (repo *ActivityRepository) FindByIDForCouple(coupleID string, activityID uint) (models.Activity, bool, error) {
	var activity models.Activity
	err := repo.database.Where("id = ? AND couple_id = ?", activityID, coupleID).First(&activity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Activity{}, false, nil
	}
	if err != nil {
		return models.Activity{}, false, err
	}
	return activity, true, nil
}

func (repo *ActivityRepository) DeleteForCouple(coupleID string, activityID uint) (bool, error) {
	result := repo.database.Where("id = ? AND couple_id = ?", activityID, coupleID).Delete(&models.Activity{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *ActivityRepository) ListByCouple(coupleID string) ([]models.Activity, error) {
	activities := make([]models.Activity, 0)
	if err := repo.database.
		Where("couple_id = ?", coupleID).
		Order("created_at DESC, id DESC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
