package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/schedule"
)

const calendarUpcomingLimit = 10

var (
	ErrCalendarEventNotFound = errors.New("calendar event not found")
	ErrCalendarEventRange    = errors.New("calendar event ends before it starts")
	ErrCalendarSaveFailed    = errors.New("save calendar event failed")
	ErrCalendarLoadFailed    = errors.New("load calendar events failed")
	ErrCalendarDeleteFailed  = errors.New("delete calendar event failed")
)

type CalendarRepository interface {
	Create(event *models.CalendarEvent) error
	Save(event *models.CalendarEvent) error
	FindByIDForUser(userID uint, eventID uint) (models.CalendarEvent, bool, error)
	DeleteForUser(userID uint, eventID uint) (bool, error)
	ListByUserRange(userID uint, from time.Time, to time.Time) ([]models.CalendarEvent, error)
	ListUpcoming(userID uint, from time.Time, limit int) ([]models.CalendarEvent, error)
}

type CalendarEventInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"omitempty,clocktime"`
	EndTime     string `json:"end_time" validate:"omitempty,clocktime"`
	Location    string `json:"location" validate:"max=200"`
	EventType   string `json:"event_type" validate:"oneof=appointment therapy social self-care other"`
	IsAllDay    bool   `json:"is_all_day"`
}

type CalendarService struct {
	events   CalendarRepository
	notices  *NoticeFeed
	location *time.Location
	now      func() time.Time
}

func NewCalendarService(events CalendarRepository, notices *NoticeFeed, location *time.Location) *CalendarService {
	if location == nil {
		location = time.UTC
	}
	return &CalendarService{events: events, notices: notices, location: location, now: time.Now}
}

func normalizeCalendarEventInput(input CalendarEventInput) CalendarEventInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Date = strings.TrimSpace(input.Date)
	input.Time = strings.TrimSpace(input.Time)
	input.EndTime = strings.TrimSpace(input.EndTime)
	input.Location = strings.TrimSpace(input.Location)
	input.EventType = strings.ToLower(strings.TrimSpace(input.EventType))
	if input.EventType == "" {
		input.EventType = models.EventTypeOther
	}
	return input
}

// eventTimes builds the start (and optional end) instant from the local date
// and clock times. All-day events and events without a time start at midnight.
func (service *CalendarService) eventTimes(input CalendarEventInput) (time.Time, *time.Time, error) {
	startClock := "00:00:00"
	if !input.IsAllDay && input.Time != "" {
		startClock = schedule.NormalizeTime(input.Time)
	}
	start, err := time.ParseInLocation("2006-01-02 15:04:05", input.Date+" "+startClock, service.location)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.IsAllDay || input.EndTime == "" {
		return start, nil, nil
	}

	end, err := time.ParseInLocation("2006-01-02 15:04:05", input.Date+" "+schedule.NormalizeTime(input.EndTime), service.location)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if end.Before(start) {
		return time.Time{}, nil, ErrCalendarEventRange
	}
	return start, &end, nil
}

func (service *CalendarService) applyInput(event *models.CalendarEvent, input CalendarEventInput) error {
	input = normalizeCalendarEventInput(input)
	if err := validateInput(input); err != nil {
		return err
	}
	start, end, err := service.eventTimes(input)
	if err != nil {
		return err
	}
	event.Title = input.Title
	event.Description = input.Description
	event.StartTime = start
	event.EndTime = end
	event.Location = input.Location
	event.EventType = input.EventType
	event.IsAllDay = input.IsAllDay
	return nil
}

func (service *CalendarService) Create(ctx context.Context, userID uint, coupleID *string, input CalendarEventInput) (models.CalendarEvent, error) {
	event := models.CalendarEvent{UserID: userID, CoupleID: copyStringPointer(coupleID)}
	if err := service.applyInput(&event, input); err != nil {
		return models.CalendarEvent{}, err
	}
	if err := service.events.Create(&event); err != nil {
		service.pushNotice(ctx, userID, syncFailedNotice(err))
		return models.CalendarEvent{}, fmt.Errorf("%w: %v", ErrCalendarSaveFailed, err)
	}
	service.pushNotice(ctx, userID, savedNotice("Event saved."))
	return event, nil
}

func (service *CalendarService) Update(ctx context.Context, userID uint, eventID uint, input CalendarEventInput) (models.CalendarEvent, error) {
	event, found, err := service.events.FindByIDForUser(userID, eventID)
	if err != nil {
		return models.CalendarEvent{}, fmt.Errorf("%w: %v", ErrCalendarSaveFailed, err)
	}
	if !found {
		return models.CalendarEvent{}, ErrCalendarEventNotFound
	}
	if err := service.applyInput(&event, input); err != nil {
		return models.CalendarEvent{}, err
	}
	if err := service.events.Save(&event); err != nil {
		service.pushNotice(ctx, userID, syncFailedNotice(err))
		return models.CalendarEvent{}, fmt.Errorf("%w: %v", ErrCalendarSaveFailed, err)
	}
	service.pushNotice(ctx, userID, savedNotice("Event updated."))
	return event, nil
}

func (service *CalendarService) Delete(userID uint, eventID uint) error {
	deleted, err := service.events.DeleteForUser(userID, eventID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCalendarDeleteFailed, err)
	}
	if !deleted {
		return ErrCalendarEventNotFound
	}
	return nil
}

func (service *CalendarService) ListMonth(userID uint, year int, month time.Month) ([]models.CalendarEvent, error) {
	from, to := MonthRange(year, month, service.location)
	events, err := service.events.ListByUserRange(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarLoadFailed, err)
	}
	return events, nil
}

// Upcoming lists the next events from the start of today.
func (service *CalendarService) Upcoming(userID uint) ([]models.CalendarEvent, error) {
	from := DateAtLocation(service.now(), service.location)
	events, err := service.events.ListUpcoming(userID, from, calendarUpcomingLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarLoadFailed, err)
	}
	return events, nil
}

func (service *CalendarService) Location() *time.Location {
	return service.location
}

func (service *CalendarService) pushNotice(ctx context.Context, userID uint, notice models.Notice) {
	if service.notices != nil {
		service.notices.Push(ctx, UserOwner(userID, nil).Key, notice)
	}
}
