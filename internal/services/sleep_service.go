package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/schedule"
)

const sleepRecentLimit = 20

var (
	ErrSleepEntryNotFound = errors.New("sleep entry not found")
	ErrSleepSaveFailed    = errors.New("save sleep entry failed")
	ErrSleepLoadFailed    = errors.New("load sleep entries failed")
	ErrSleepDeleteFailed  = errors.New("delete sleep entry failed")
)

type SleepRepository interface {
	FindByUserDate(userID uint, date string) (models.SleepEntry, bool, error)
	Create(entry *models.SleepEntry) error
	Save(entry *models.SleepEntry) error
	DeleteForUser(userID uint, entryID uint) (bool, error)
	ListRecentByUser(userID uint, limit int) ([]models.SleepEntry, error)
}

type SleepInput struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Bedtime  string `json:"bedtime" validate:"required,clocktime"`
	WakeTime string `json:"wake_time" validate:"required,clocktime"`
	Quality  int    `json:"quality" validate:"min=1,max=5"`
	Notes    string `json:"notes" validate:"max=1000"`
}

type SleepService struct {
	entries SleepRepository
	notices *NoticeFeed
}

func NewSleepService(entries SleepRepository, notices *NoticeFeed) *SleepService {
	return &SleepService{entries: entries, notices: notices}
}

// CalculateSleepDuration returns the hours between bedtime and wake time,
// wrapping past midnight, rounded to one decimal.
func CalculateSleepDuration(bedtime string, wakeTime string) (float64, error) {
	bed, err := parseClock(bedtime)
	if err != nil {
		return 0, err
	}
	wake, err := parseClock(wakeTime)
	if err != nil {
		return 0, err
	}

	elapsed := wake - bed
	if elapsed < 0 {
		elapsed += 24 * time.Hour
	}
	return math.Round(elapsed.Hours()*10) / 10, nil
}

func parseClock(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if !schedule.ValidClockTime(raw) {
		return 0, fmt.Errorf("%w: clock time %q", ErrInvalidInput, raw)
	}
	parsed, _ := time.Parse("15:04:05", schedule.NormalizeTime(raw))
	return time.Duration(parsed.Hour())*time.Hour +
		time.Duration(parsed.Minute())*time.Minute +
		time.Duration(parsed.Second())*time.Second, nil
}

// Save keeps one entry per user and date: an existing entry is updated in
// place, otherwise a new one is inserted.
func (service *SleepService) Save(ctx context.Context, userID uint, coupleID *string, input SleepInput) (models.SleepEntry, error) {
	input.Date = strings.TrimSpace(input.Date)
	input.Bedtime = strings.TrimSpace(input.Bedtime)
	input.WakeTime = strings.TrimSpace(input.WakeTime)
	input.Notes = strings.TrimSpace(input.Notes)
	if err := validateInput(input); err != nil {
		return models.SleepEntry{}, err
	}
	duration, err := CalculateSleepDuration(input.Bedtime, input.WakeTime)
	if err != nil {
		return models.SleepEntry{}, err
	}

	entry, found, err := service.entries.FindByUserDate(userID, input.Date)
	if err != nil {
		return models.SleepEntry{}, fmt.Errorf("%w: %v", ErrSleepSaveFailed, err)
	}
	entry.UserID = userID
	entry.CoupleID = copyStringPointer(coupleID)
	entry.Date = input.Date
	entry.Bedtime = input.Bedtime
	entry.WakeTime = input.WakeTime
	entry.Quality = input.Quality
	entry.Duration = duration
	entry.Notes = input.Notes

	description := "Sleep entry synced."
	if found {
		err = service.entries.Save(&entry)
		description = "Sleep entry updated."
	} else {
		err = service.entries.Create(&entry)
	}
	if err != nil {
		service.pushNotice(ctx, userID, syncFailedNotice(err))
		return models.SleepEntry{}, fmt.Errorf("%w: %v", ErrSleepSaveFailed, err)
	}
	service.pushNotice(ctx, userID, savedNotice(description))
	return entry, nil
}

func (service *SleepService) Delete(userID uint, entryID uint) error {
	deleted, err := service.entries.DeleteForUser(userID, entryID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSleepDeleteFailed, err)
	}
	if !deleted {
		return ErrSleepEntryNotFound
	}
	return nil
}

func (service *SleepService) Recent(userID uint) ([]models.SleepEntry, error) {
	entries, err := service.entries.ListRecentByUser(userID, sleepRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSleepLoadFailed, err)
	}
	return entries, nil
}

// AverageSleepDuration averages the entries' durations to one decimal; an
// empty list averages to zero.
func AverageSleepDuration(entries []models.SleepEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	total := 0.0
	for _, entry := range entries {
		total += entry.Duration
	}
	return math.Round(total/float64(len(entries))*10) / 10
}

func (service *SleepService) pushNotice(ctx context.Context, userID uint, notice models.Notice) {
	if service.notices != nil {
		service.notices.Push(ctx, UserOwner(userID, nil).Key, notice)
	}
}
