package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/miffy/internal/models"
)

var (
	ErrActivityNotFound     = errors.New("activity not found")
	ErrActivitySaveFailed   = errors.New("save activity failed")
	ErrActivityLoadFailed   = errors.New("load activities failed")
	ErrActivityDeleteFailed = errors.New("delete activity failed")
)

type ActivityRepository interface {
	Create(activity *models.Activity) error
	Save(activity *models.Activity) error
	FindByIDForCouple(coupleID string, activityID uint) (models.Activity, bool, error)
	DeleteForCouple(coupleID string, activityID uint) (bool, error)
	ListByCouple(coupleID string) ([]models.Activity, error)
}

type ActivityInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Type        string `json:"type" validate:"oneof=movie game date other"`
	Description string `json:"description" validate:"max=2000"`
	Priority    string `json:"priority" validate:"oneof=low medium high"`
	Status      string `json:"status" validate:"oneof=wishlist planned completed"`
}

// ActivityService manages the couple's shared wishlist. Every operation
// requires the caller to be a member of the couple.
type ActivityService struct {
	activities ActivityRepository
	members    CoupleMembershipChecker
	now        func() time.Time
}

func NewActivityService(activities ActivityRepository, members CoupleMembershipChecker) *ActivityService {
	return &ActivityService{activities: activities, members: members, now: time.Now}
}

func normalizeActivityInput(input ActivityInput) ActivityInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))
	if input.Type == "" {
		input.Type = models.ActivityTypeOther
	}
	input.Priority = strings.ToLower(strings.TrimSpace(input.Priority))
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	input.Status = strings.ToLower(strings.TrimSpace(input.Status))
	if input.Status == "" {
		input.Status = models.ActivityStatusWishlist
	}
	return input
}

func (service *ActivityService) List(userID uint, coupleID string) ([]models.Activity, error) {
	if _, err := service.members.RequireMember(userID, coupleID); err != nil {
		return nil, err
	}
	activities, err := service.activities.ListByCouple(coupleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivityLoadFailed, err)
	}
	return activities, nil
}

func (service *ActivityService) Create(userID uint, coupleID string, input ActivityInput) (models.Activity, error) {
	if _, err := service.members.RequireMember(userID, coupleID); err != nil {
		return models.Activity{}, err
	}
	input = normalizeActivityInput(input)
	if err := validateInput(input); err != nil {
		return models.Activity{}, err
	}

	activity := models.Activity{CoupleID: coupleID, AddedBy: userID}
	service.applyInput(&activity, input)
	if err := service.activities.Create(&activity); err != nil {
		return models.Activity{}, fmt.Errorf("%w: %v", ErrActivitySaveFailed, err)
	}
	return activity, nil
}

func (service *ActivityService) Update(userID uint, coupleID string, activityID uint, input ActivityInput) (models.Activity, error) {
	if _, err := service.members.RequireMember(userID, coupleID); err != nil {
		return models.Activity{}, err
	}
	input = normalizeActivityInput(input)
	if err := validateInput(input); err != nil {
		return models.Activity{}, err
	}

	activity, found, err := service.activities.FindByIDForCouple(coupleID, activityID)
	if err != nil {
		return models.Activity{}, fmt.Errorf("%w: %v", ErrActivityLoadFailed, err)
	}
	if !found {
		return models.Activity{}, ErrActivityNotFound
	}
	service.applyInput(&activity, input)
	if err := service.activities.Save(&activity); err != nil {
		return models.Activity{}, fmt.Errorf("%w: %v", ErrActivitySaveFailed, err)
	}
	return activity, nil
}

func (service *ActivityService) Delete(userID uint, coupleID string, activityID uint) error {
	if _, err := service.members.RequireMember(userID, coupleID); err != nil {
		return err
	}
	deleted, err := service.activities.DeleteForCouple(coupleID, activityID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrActivityDeleteFailed, err)
	}
	if !deleted {
		return ErrActivityNotFound
	}
	return nil
}

// applyInput copies the input onto the activity. Moving to completed stamps
// completed_at once; leaving completed clears it.
func (service *ActivityService) applyInput(activity *models.Activity, input ActivityInput) {
	activity.Title = input.Title
	activity.Type = input.Type
	activity.Description = input.Description
	activity.Priority = input.Priority
	activity.Status = input.Status

	switch {
	case input.Status != models.ActivityStatusCompleted:
		activity.CompletedAt = nil
	case activity.CompletedAt == nil:
		completedAt := service.now()
		activity.CompletedAt = &completedAt
	}
}
