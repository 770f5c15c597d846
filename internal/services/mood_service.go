package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/miffy/internal/logging"
	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/realtime"
)

const moodRecentLimit = 20

var (
	ErrUnknownMood       = errors.New("unknown mood")
	ErrMoodCreateFailed  = errors.New("create mood entry failed")
	ErrMoodLoadFailed    = errors.New("load mood entries failed")
	ErrMoodFeedForbidden = errors.New("mood feed requires couple membership")
)

type MoodRepository interface {
	Create(entry *models.MoodEntry) error
	ListRecentByUser(userID uint, limit int) ([]models.MoodEntry, error)
	LatestByUserSince(userID uint, since time.Time) (models.MoodEntry, bool, error)
	ListRecentByCouple(coupleID string, limit int) ([]models.MoodEntry, error)
}

type CoupleMembershipChecker interface {
	RequireMember(userID uint, coupleID string) (models.CoupleMember, error)
}

type MoodInput struct {
	MoodID string `json:"mood_id" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

func CoupleMoodTopic(coupleID string) string {
	return "couple:" + coupleID + ":moods"
}

type MoodService struct {
	moods    MoodRepository
	members  CoupleMembershipChecker
	broker   EventBroker
	notices  *NoticeFeed
	location *time.Location
	now      func() time.Time
	logger   *logging.Logger
}

func NewMoodService(moods MoodRepository, members CoupleMembershipChecker, broker EventBroker, notices *NoticeFeed, location *time.Location, logger *logging.Logger) *MoodService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MoodService{
		moods:    moods,
		members:  members,
		broker:   broker,
		notices:  notices,
		location: location,
		now:      time.Now,
		logger:   logger.WithComponent("moods"),
	}
}

func (service *MoodService) Catalog() []models.MoodOption {
	return models.DefaultMoodOptions()
}

// Record stores a mood entry with the catalog score and, when the entry is
// tagged with a couple, announces it to the couple's feed.
func (service *MoodService) Record(ctx context.Context, userID uint, coupleID *string, input MoodInput) (models.MoodEntry, error) {
	input.MoodID = strings.TrimSpace(input.MoodID)
	input.Note = strings.TrimSpace(input.Note)
	if err := validateInput(input); err != nil {
		return models.MoodEntry{}, err
	}
	option, ok := models.FindMoodOption(input.MoodID)
	if !ok {
		return models.MoodEntry{}, ErrUnknownMood
	}

	entry := models.MoodEntry{
		UserID:   userID,
		CoupleID: copyStringPointer(coupleID),
		MoodID:   option.ID,
		Score:    option.Score,
		Note:     input.Note,
	}
	if err := service.moods.Create(&entry); err != nil {
		service.pushNotice(ctx, userID, syncFailedNotice(err))
		return models.MoodEntry{}, fmt.Errorf("%w: %v", ErrMoodCreateFailed, err)
	}
	service.pushNotice(ctx, userID, savedNotice("Mood entry synced."))

	if entry.CoupleID != nil && service.broker != nil {
		payload, err := json.Marshal(SanitizeMoodForFeed(entry))
		if err == nil {
			err = service.broker.Publish(ctx, CoupleMoodTopic(*entry.CoupleID), payload)
		}
		if err != nil {
			service.logger.WithError(err).Warnw("publish mood event failed", "couple_id", *entry.CoupleID)
		}
	}
	return entry, nil
}

func (service *MoodService) Recent(userID uint) ([]models.MoodEntry, error) {
	entries, err := service.moods.ListRecentByUser(userID, moodRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMoodLoadFailed, err)
	}
	return entries, nil
}

// Current returns the latest mood recorded today in the configured location.
func (service *MoodService) Current(userID uint) (models.MoodEntry, bool, error) {
	start, _ := DayRange(service.now(), service.location)
	entry, found, err := service.moods.LatestByUserSince(userID, start)
	if err != nil {
		return models.MoodEntry{}, false, fmt.Errorf("%w: %v", ErrMoodLoadFailed, err)
	}
	return entry, found, nil
}

// CoupleFeed is the guardian monitor: the couple's most recent moods in the
// feed projection.
func (service *MoodService) CoupleFeed(userID uint, coupleID string) ([]MoodFeedItem, error) {
	if err := service.requireMember(userID, coupleID); err != nil {
		return nil, err
	}
	entries, err := service.moods.ListRecentByCouple(coupleID, moodRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMoodLoadFailed, err)
	}
	return SanitizeMoodsForFeed(entries), nil
}

// SubscribeCouple streams mood inserts for the couple from now on. There is
// no replay; callers fetch CoupleFeed first.
func (service *MoodService) SubscribeCouple(ctx context.Context, userID uint, coupleID string) (*realtime.Subscription, error) {
	if err := service.requireMember(userID, coupleID); err != nil {
		return nil, err
	}
	if service.broker == nil {
		return nil, realtime.ErrBrokerClosed
	}
	return service.broker.Subscribe(ctx, CoupleMoodTopic(coupleID))
}

func (service *MoodService) requireMember(userID uint, coupleID string) error {
	if _, err := service.members.RequireMember(userID, coupleID); err != nil {
		if errors.Is(err, ErrCoupleMembershipRequired) {
			return ErrMoodFeedForbidden
		}
		return err
	}
	return nil
}

func (service *MoodService) pushNotice(ctx context.Context, userID uint, notice models.Notice) {
	if service.notices != nil {
		service.notices.Push(ctx, UserOwner(userID, nil).Key, notice)
	}
}
