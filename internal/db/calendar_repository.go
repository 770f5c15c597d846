package db

import (
	"errors"
	"time"

	"github.com/terraincognita07/miffy/internal/models"
	"gorm.io/gorm"
)

type CalendarRepository struct {
	database *gorm.DB
}

func NewCalendarRepository(database *gorm.DB) *CalendarRepository {
	return &CalendarRepository{database: database}
}

func (repo *CalendarRepository) Create(event *models.CalendarEvent) error {
	return repo.database.Create(event).Error
}

func (repo *CalendarRepository) Save(event *models.CalendarEvent) error {
	return repo.database.Save(event).Error
}

func (repo *CalendarRepository) FindByIDForUser(userID uint, eventID uint) (models.CalendarEvent, bool, error) {
	var event models.CalendarEvent
	err := repo.database.Where("id = ? AND user_id = ?", eventID, userID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CalendarEvent{}, false, nil
	}
	if err != nil {
		return models.CalendarEvent{}, false, err
	}
	return event, true, nil
}

func (repo *CalendarRepository) DeleteForUser(userID uint, eventID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", eventID, userID).Delete(&models.CalendarEvent{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByUserRange returns events starting in [from, to).
func (repo *CalendarRepository) ListByUserRange(userID uint, from time.Time, to time.Time) ([]models.CalendarEvent, error) {
	events := make([]models.CalendarEvent, 0)
	if err := repo.database.
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, from, to).
		Order("start_time ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (repo *CalendarRepository) ListUpcoming(userID uint, from time.Time, limit int) ([]models.CalendarEvent, error) {
	events := make([]models.CalendarEvent, 0)
	if err := repo.database.
		Where("user_id = ? AND start_time >= ?", userID, from).
		Order("start_time ASC, id ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
