package db

import (
	"errors"

	"github.com/terraincognita07/miffy/internal/models"
	"gorm.io/gorm"
)

type TodoRepository struct {
	database *gorm.DB
}

func NewTodoRepository(database *gorm.DB) *TodoRepository {
	return &TodoRepository{database: database}
}

func (repo *TodoRepository) Create(item *models.TodoItem) error {
	return repo.database.Create(item).Error
}

func (repo *TodoRepository) Save(item *models.TodoItem) error {
	return repo.database.Save(item).Error
}

func (repo *TodoRepository) FindByIDForUser(userID uint, itemID uint) (models.TodoItem, bool, error) {
	var item models.TodoItem
	err := repo.database.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TodoItem{}, false, nil
	}
	if err != nil {
		return models.TodoItem{}, false, err
	}
	return item, true, nil
}

func (repo *TodoRepository) DeleteForUser(userID uint, itemID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.TodoItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByUser orders open items before completed ones, newest first.
func (repo *TodoRepository) ListByUser(userID uint) ([]models.TodoItem, error) {
	items := make([]models.TodoItem, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("completed ASC, created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
