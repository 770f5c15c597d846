package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/miffy/internal/models"
)

var (
	ErrTodoNotFound     = errors.New("todo not found")
	ErrTodoSaveFailed   = errors.New("save todo failed")
	ErrTodoLoadFailed   = errors.New("load todos failed")
	ErrTodoDeleteFailed = errors.New("delete todo failed")
)

type TodoRepository interface {
	Create(item *models.TodoItem) error
	Save(item *models.TodoItem) error
	FindByIDForUser(userID uint, itemID uint) (models.TodoItem, bool, error)
	DeleteForUser(userID uint, itemID uint) (bool, error)
	ListByUser(userID uint) ([]models.TodoItem, error)
}

type TodoInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"oneof=wellness daily social work other"`
	Priority    string `json:"priority" validate:"oneof=low medium high"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type TodoService struct {
	todos   TodoRepository
	notices *NoticeFeed
	now     func() time.Time
}

func NewTodoService(todos TodoRepository, notices *NoticeFeed) *TodoService {
	return &TodoService{todos: todos, notices: notices, now: time.Now}
}

func normalizeTodoInput(input TodoInput) TodoInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.ToLower(strings.TrimSpace(input.Category))
	if input.Category == "" {
		input.Category = models.TodoCategoryDaily
	}
	input.Priority = strings.ToLower(strings.TrimSpace(input.Priority))
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	input.DueDate = strings.TrimSpace(input.DueDate)
	return input
}

func (service *TodoService) Create(ctx context.Context, userID uint, coupleID *string, input TodoInput) (models.TodoItem, error) {
	input = normalizeTodoInput(input)
	if err := validateInput(input); err != nil {
		return models.TodoItem{}, err
	}
	item := models.TodoItem{
		UserID:      userID,
		CoupleID:    copyStringPointer(coupleID),
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	}
	if err := service.todos.Create(&item); err != nil {
		service.pushNotice(ctx, userID, syncFailedNotice(err))
		return models.TodoItem{}, fmt.Errorf("%w: %v", ErrTodoSaveFailed, err)
	}
	service.pushNotice(ctx, userID, savedNotice("Task saved."))
	return item, nil
}

func (service *TodoService) Update(ctx context.Context, userID uint, itemID uint, input TodoInput) (models.TodoItem, error) {
	input = normalizeTodoInput(input)
	if err := validateInput(input); err != nil {
		return models.TodoItem{}, err
	}
	item, err := service.find(userID, itemID)
	if err != nil {
		return models.TodoItem{}, err
	}
	item.Title = input.Title
	item.Description = input.Description
	item.Category = input.Category
	item.Priority = input.Priority
	item.DueDate = input.DueDate
	return service.save(ctx, item, "Task updated.")
}

// Toggle flips completion; completing stamps completed_at and reopening
// clears it.
func (service *TodoService) Toggle(ctx context.Context, userID uint, itemID uint) (models.TodoItem, error) {
	item, err := service.find(userID, itemID)
	if err != nil {
		return models.TodoItem{}, err
	}
	item.Completed = !item.Completed
	if item.Completed {
		completedAt := service.now()
		item.CompletedAt = &completedAt
	} else {
		item.CompletedAt = nil
	}
	return service.save(ctx, item, "Task updated.")
}

func (service *TodoService) Delete(userID uint, itemID uint) error {
	deleted, err := service.todos.DeleteForUser(userID, itemID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTodoDeleteFailed, err)
	}
	if !deleted {
		return ErrTodoNotFound
	}
	return nil
}

func (service *TodoService) List(userID uint) ([]models.TodoItem, error) {
	items, err := service.todos.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTodoLoadFailed, err)
	}
	return items, nil
}

func (service *TodoService) find(userID uint, itemID uint) (models.TodoItem, error) {
	item, found, err := service.todos.FindByIDForUser(userID, itemID)
	if err != nil {
		return models.TodoItem{}, fmt.Errorf("%w: %v", ErrTodoLoadFailed, err)
	}
	if !found {
		return models.TodoItem{}, ErrTodoNotFound
	}
	return item, nil
}

func (service *TodoService) save(ctx context.Context, item models.TodoItem, description string) (models.TodoItem, error) {
	if err := service.todos.Save(&item); err != nil {
		service.pushNotice(ctx, item.UserID, syncFailedNotice(err))
		return models.TodoItem{}, fmt.Errorf("%w: %v", ErrTodoSaveFailed, err)
	}
	service.pushNotice(ctx, item.UserID, savedNotice(description))
	return item, nil
}

func (service *TodoService) pushNotice(ctx context.Context, userID uint, notice models.Notice) {
	if service.notices != nil {
		service.notices.Push(ctx, UserOwner(userID, nil).Key, notice)
	}
}
