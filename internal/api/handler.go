package api

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/miffy/internal/db"
	"github.com/terraincognita07/miffy/internal/logging"
	"github.com/terraincognita07/miffy/internal/metrics"
	"github.com/terraincognita07/miffy/internal/realtime"
	"github.com/terraincognita07/miffy/internal/services"
	"gorm.io/gorm"
)

const (
	defaultAuthTokenTTL      = 30 * 24 * time.Hour
	defaultLinkRatePerMinute = 5
)

type Options struct {
	SecretKey         string
	Location          *time.Location
	CookieSecure      bool
	SiteURL           string
	MagicLinkTTL      time.Duration
	LinkRatePerMinute int
	Logger            *logging.Logger
}

type Handler struct {
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	logger       *logging.Logger
	broker       realtime.Broker
	linkLimiter  *attemptLimiter
	now          func() time.Time

	repositories *db.Repositories
	intake       *services.IntakeService
	medications  *services.MedicationService
	notices      *services.NoticeFeed
	moods        *services.MoodService
	sleep        *services.SleepService
	calendar     *services.CalendarService
	todos        *services.TodoService
	activities   *services.ActivityService
	couples      *services.CoupleService
	auth         *services.AuthService
}

func NewHandler(database *gorm.DB, broker realtime.Broker, sender services.LinkSender, options Options) (*Handler, error) {
	secretKey := strings.TrimSpace(options.SecretKey)
	if secretKey == "" {
		return nil, errors.New("secret key is required")
	}
	if broker == nil {
		return nil, errors.New("realtime broker is required")
	}
	location := options.Location
	if location == nil {
		location = time.Local
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if sender == nil {
		sender = services.NewLogLinkSender(logger)
	}
	ratePerMinute := options.LinkRatePerMinute
	if ratePerMinute <= 0 {
		ratePerMinute = defaultLinkRatePerMinute
	}

	handler := &Handler{
		secretKey:    []byte(secretKey),
		location:     location,
		cookieSecure: options.CookieSecure,
		logger:       logger.WithComponent("api"),
		broker:       broker,
		linkLimiter:  newAttemptLimiter(ratePerMinute),
		now:          time.Now,
		repositories: db.NewRepositories(database),
	}
	handler.withDependencies(sender, options)
	return handler, nil
}

func (handler *Handler) withDependencies(sender services.LinkSender, options Options) {
	repositories := handler.repositories

	handler.notices = services.NewNoticeFeed(handler.broker, handler.logger)
	handler.intake = services.NewIntakeService(repositories.Medications, repositories.MedicationLogs, services.IntakeOptions{
		Location: handler.location,
		Notices:  handler.notices,
		Observer: metrics.IntakeObserver{},
		Logger:   handler.logger,
	})
	handler.medications = services.NewMedicationService(repositories.Medications, handler.intake, handler.notices)
	handler.couples = services.NewCoupleService(repositories.Couples)
	handler.moods = services.NewMoodService(repositories.Moods, handler.couples, handler.broker, handler.notices, handler.location, handler.logger)
	handler.sleep = services.NewSleepService(repositories.Sleep, handler.notices)
	handler.calendar = services.NewCalendarService(repositories.Calendar, handler.notices, handler.location)
	handler.todos = services.NewTodoService(repositories.Todos, handler.notices)
	handler.activities = services.NewActivityService(repositories.Activities, handler.couples)
	handler.auth = services.NewAuthService(repositories.Users, services.AuthOptions{
		SecretKey: handler.secretKey,
		SiteURL:   options.SiteURL,
		LinkTTL:   options.MagicLinkTTL,
		Sender:    sender,
	})
}

// Drain waits for intake writes that are still in flight.
func (handler *Handler) Drain() {
	handler.intake.Drain()
}
