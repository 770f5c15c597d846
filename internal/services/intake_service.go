package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/terraincognita07/miffy/internal/logging"
	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/schedule"
)

var (
	ErrIntakeInvalidAction = errors.New("invalid intake action")
	ErrIntakeInvalidTime   = errors.New("invalid intake time")
	ErrIntakeLoadFailed    = errors.New("load intake schedule failed")
)

const (
	intakeSessionLimit = 1000
	// intakeSessionFloor is where eviction stops once it has started.
	intakeSessionFloor = intakeSessionLimit * 9 / 10
)

type IntakeMedicationRepository interface {
	ListByUser(userID uint) ([]models.Medication, error)
}

type IntakeLogRepository interface {
	ListByUserDate(userID uint, scheduledDate string) ([]models.MedicationLog, error)
	Upsert(ctx context.Context, entry *models.MedicationLog) error
}

type IntakeOptions struct {
	Location *time.Location
	Now      func() time.Time
	Notices  *NoticeFeed
	Observer schedule.Observer
	Logger   *logging.Logger
}

// ScheduleView is today's schedule for one owner with its progress summary.
type ScheduleView struct {
	Date    string           `json:"date"`
	Slots   []schedule.Slot  `json:"slots"`
	Summary schedule.Summary `json:"summary"`
	Percent int              `json:"percent"`
}

// IntakeService keeps one schedule store per owner for the current day.
// Signed-in owners are loaded from the database on first access each day;
// guests get a local-only store that lives until the session is evicted.
type IntakeService struct {
	medications IntakeMedicationRepository
	logs        IntakeLogRepository
	location    *time.Location
	now         func() time.Time
	notices     *NoticeFeed
	observer    schedule.Observer
	logger      *logging.Logger

	mu       sync.Mutex
	sessions map[string]*intakeSession
}

type intakeSession struct {
	store      *schedule.Store
	guest      bool
	lastAccess time.Time
}

func NewIntakeService(medications IntakeMedicationRepository, logs IntakeLogRepository, options IntakeOptions) *IntakeService {
	location := options.Location
	if location == nil {
		location = time.UTC
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &IntakeService{
		medications: medications,
		logs:        logs,
		location:    location,
		now:         now,
		notices:     options.Notices,
		observer:    options.Observer,
		logger:      logger.WithComponent("intake"),
		sessions:    make(map[string]*intakeSession),
	}
}

// Session returns the owner's store for today, loading it when the owner has
// no store yet or the stored one belongs to an earlier day.
func (service *IntakeService) Session(owner Owner) (*schedule.Store, error) {
	today := TodayString(service.now(), service.location)

	service.mu.Lock()
	var store *schedule.Store
	session, ok := service.sessions[owner.Key]
	if ok {
		session.lastAccess = service.now()
		store = session.store
	}
	service.mu.Unlock()
	if ok && store.Date() == today {
		store.SetCoupleID(owner.CoupleID)
		return store, nil
	}

	if ok && owner.Authenticated() {
		// Yesterday's writes land before today's state is read.
		store.Wait()
	}
	fresh, err := service.newStore(owner, today)
	if err != nil {
		return nil, err
	}
	if ok && !owner.Authenticated() {
		// Guest medications carry over to the new day; yesterday's logs do not.
		if err := fresh.Load(store.Medications(), nil); err != nil {
			return nil, err
		}
	}

	service.mu.Lock()
	defer service.mu.Unlock()
	if current, ok := service.sessions[owner.Key]; ok && current.store.Date() == today {
		current.store.SetCoupleID(owner.CoupleID)
		return current.store, nil
	}
	service.evictLocked()
	service.sessions[owner.Key] = &intakeSession{
		store:      fresh,
		guest:      !owner.Authenticated(),
		lastAccess: service.now(),
	}
	return fresh, nil
}

func (service *IntakeService) newStore(owner Owner, today string) (*schedule.Store, error) {
	options := schedule.Options{
		UserID:   owner.UserID,
		CoupleID: owner.CoupleID,
		Date:     today,
		Location: service.location,
		Now:      service.now,
		Observer: service.observer,
	}
	if service.notices != nil {
		options.Notifier = service.notices.For(owner.Key)
	}
	if owner.Authenticated() {
		options.Persister = logPersister{logs: service.logs}
	}
	store := schedule.NewStore(options)
	if !owner.Authenticated() {
		return store, nil
	}

	medications, err := service.medications.ListByUser(owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntakeLoadFailed, err)
	}
	logs, err := service.logs.ListByUserDate(owner.UserID, today)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntakeLoadFailed, err)
	}
	if err := store.Load(toScheduleMedications(medications), toScheduleLogs(logs)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntakeLoadFailed, err)
	}
	return store, nil
}

// evictLocked makes room once the session limit is reached. Sessions with
// writes in flight are never dropped. Sessions that lose nothing go first,
// oldest first: signed-in owners, reloaded from the database on next access,
// and guests without medications. Guests holding medications only exist in
// memory and are dropped last.
func (service *IntakeService) evictLocked() {
	if len(service.sessions) < intakeSessionLimit {
		return
	}

	type candidate struct {
		key     string
		lossy   bool
		touched time.Time
	}
	candidates := make([]candidate, 0, len(service.sessions))
	for key, session := range service.sessions {
		if session.store.Pending() {
			continue
		}
		lossy := session.guest && len(session.store.Medications()) > 0
		candidates = append(candidates, candidate{key: key, lossy: lossy, touched: session.lastAccess})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].lossy != candidates[j].lossy {
			return !candidates[i].lossy
		}
		return candidates[i].touched.Before(candidates[j].touched)
	})

	dropped := 0
	for _, candidate := range candidates {
		if len(service.sessions) <= intakeSessionFloor {
			break
		}
		if candidate.lossy {
			service.logger.Warnw("dropping guest intake session", "sessions", len(service.sessions))
		}
		delete(service.sessions, candidate.key)
		dropped++
	}
	service.logger.Debugw("intake sessions evicted", "dropped", dropped, "remaining", len(service.sessions))
}

func (service *IntakeService) Schedule(owner Owner) (ScheduleView, error) {
	store, err := service.Session(owner)
	if err != nil {
		return ScheduleView{}, err
	}
	slots := store.Schedule()
	summary := schedule.Summarize(slots)
	return ScheduleView{
		Date:    store.Date(),
		Slots:   slots,
		Summary: summary,
		Percent: summary.Percent(),
	}, nil
}

// Apply records take, skip or clear for one slot. The returned log is the
// optimistic local state; persistence outcomes arrive as notices.
func (service *IntakeService) Apply(ctx context.Context, owner Owner, rawAction string, medicationID string, clock string) (schedule.Log, error) {
	action, err := schedule.ParseAction(rawAction)
	if err != nil {
		return schedule.Log{}, ErrIntakeInvalidAction
	}
	store, err := service.Session(owner)
	if err != nil {
		return schedule.Log{}, err
	}

	entry, err := store.Apply(ctx, action, medicationID, clock)
	switch {
	case err == nil:
		return entry, nil
	case errors.Is(err, schedule.ErrInvalidTime), errors.Is(err, schedule.ErrUnscheduledTime):
		return schedule.Log{}, ErrIntakeInvalidTime
	case errors.Is(err, schedule.ErrUnknownMedication):
		return schedule.Log{}, ErrMedicationNotFound
	case errors.Is(err, schedule.ErrInvalidAction):
		return schedule.Log{}, ErrIntakeInvalidAction
	default:
		return schedule.Log{}, err
	}
}

// Reload waits for the owner's pending writes and drops the session so that
// the next access reads medications and logs again. Guest sessions only exist
// in memory and are left alone.
func (service *IntakeService) Reload(owner Owner) {
	if !owner.Authenticated() {
		return
	}

	service.mu.Lock()
	session, ok := service.sessions[owner.Key]
	delete(service.sessions, owner.Key)
	service.mu.Unlock()

	if ok {
		session.store.Wait()
	}
}

// Drain blocks until every store's in-flight persistence has finished.
func (service *IntakeService) Drain() {
	service.mu.Lock()
	stores := make([]*schedule.Store, 0, len(service.sessions))
	for _, session := range service.sessions {
		stores = append(stores, session.store)
	}
	service.mu.Unlock()

	for _, store := range stores {
		store.Wait()
	}
}

type logPersister struct {
	logs IntakeLogRepository
}

func (persister logPersister) PersistLog(ctx context.Context, entry schedule.Log) (schedule.Log, error) {
	record := toMedicationLog(entry)
	if err := persister.logs.Upsert(ctx, &record); err != nil {
		return schedule.Log{}, err
	}
	return toScheduleLog(record), nil
}

func toScheduleMedication(medication models.Medication) schedule.Medication {
	times := make([]string, len(medication.Times))
	copy(times, medication.Times)
	return schedule.Medication{
		ID:        medication.ID,
		Name:      medication.Name,
		Dosage:    medication.Dosage,
		Frequency: medication.Frequency,
		Times:     times,
		Color:     medication.Color,
		Notes:     medication.Notes,
		CreatedAt: medication.CreatedAt,
	}
}

func toScheduleMedications(medications []models.Medication) []schedule.Medication {
	converted := make([]schedule.Medication, 0, len(medications))
	for _, medication := range medications {
		converted = append(converted, toScheduleMedication(medication))
	}
	return converted
}

func toScheduleLog(entry models.MedicationLog) schedule.Log {
	return schedule.Log{
		ID:            entry.ID,
		UserID:        entry.UserID,
		CoupleID:      copyStringPointer(entry.CoupleID),
		MedicationID:  entry.MedicationID,
		ScheduledTime: entry.ScheduledTime,
		ScheduledDate: entry.ScheduledDate,
		TakenAt:       entry.TakenAt,
		Skipped:       entry.Skipped,
		Notes:         entry.Notes,
		CreatedAt:     entry.CreatedAt,
	}
}

func toScheduleLogs(entries []models.MedicationLog) []schedule.Log {
	converted := make([]schedule.Log, 0, len(entries))
	for _, entry := range entries {
		converted = append(converted, toScheduleLog(entry))
	}
	return converted
}

func toMedicationLog(entry schedule.Log) models.MedicationLog {
	return models.MedicationLog{
		ID:            entry.ID,
		UserID:        entry.UserID,
		CoupleID:      copyStringPointer(entry.CoupleID),
		MedicationID:  entry.MedicationID,
		ScheduledTime: schedule.NormalizeTime(entry.ScheduledTime),
		ScheduledDate: entry.ScheduledDate,
		TakenAt:       entry.TakenAt,
		Skipped:       entry.Skipped,
		Notes:         entry.Notes,
		CreatedAt:     entry.CreatedAt,
	}
}
