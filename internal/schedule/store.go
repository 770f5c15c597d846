package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidAction               = errors.New("invalid intake action")
	ErrInvalidTime                 = errors.New("invalid scheduled time")
	ErrUnscheduledTime             = errors.New("time is not scheduled for the medication")
	ErrUnknownMedication           = errors.New("medication is not in the schedule")
	ErrMedicationIdentifierMissing = errors.New("medication identifier is missing")
)

type Action string

const (
	ActionTake  Action = "take"
	ActionSkip  Action = "skip"
	ActionClear Action = "clear"
)

func ParseAction(raw string) (Action, error) {
	switch action := Action(strings.ToLower(strings.TrimSpace(raw))); action {
	case ActionTake, ActionSkip, ActionClear:
		return action, nil
	default:
		return "", ErrInvalidAction
	}
}

type Result string

const (
	ResultApplied     Result = "applied"
	ResultPersisted   Result = "persisted"
	ResultFailed      Result = "failed"
	ResultSkippedSync Result = "skipped_sync"
	ResultSuperseded  Result = "superseded"
)

const (
	NoticeVariantDefault     = "default"
	NoticeVariantDestructive = "destructive"
)

type Notice struct {
	Title       string
	Description string
	Variant     string
}

// Persister writes one log with upsert semantics on its key and returns the stored row.
type Persister interface {
	PersistLog(ctx context.Context, entry Log) (Log, error)
}

type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

type Observer interface {
	ObserveIntake(action Action, result Result)
}

type Options struct {
	// UserID zero means local-only: actions apply but are never persisted.
	UserID    uint
	CoupleID  *string
	Date      string
	Location  *time.Location
	Now       func() time.Time
	Persister Persister
	Notifier  Notifier
	Observer  Observer
}

// Store holds one user's medications and logs for a single date and reconciles
// intake actions against persistence. Local state changes before persistence
// starts and is never rolled back.
type Store struct {
	mu          sync.Mutex
	userID      uint
	coupleID    *string
	date        string
	now         func() time.Time
	persister   Persister
	notifier    Notifier
	observer    Observer
	medications []Medication
	logs        []Log

	cached      []Slot
	cacheValid  bool
	sequences   map[Key]uint64
	persistLock map[Key]*sync.Mutex
	inflight    sync.WaitGroup
	pending     atomic.Int64
}

func NewStore(options Options) *Store {
	now := options.Now
	if now == nil {
		now = time.Now
	}
	date := strings.TrimSpace(options.Date)
	if date == "" {
		date = FormatDate(now(), options.Location)
	}
	return &Store{
		userID:      options.UserID,
		coupleID:    copyString(options.CoupleID),
		date:        date,
		now:         now,
		persister:   options.Persister,
		notifier:    options.Notifier,
		observer:    options.Observer,
		medications: make([]Medication, 0),
		logs:        make([]Log, 0),
		sequences:   make(map[Key]uint64),
		persistLock: make(map[Key]*sync.Mutex),
	}
}

func (store *Store) Date() string {
	return store.date
}

func (store *Store) LocalOnly() bool {
	return store.userID == 0
}

// Load replaces the medications and logs, typically from a full reload.
func (store *Store) Load(medications []Medication, logs []Log) error {
	for _, medication := range medications {
		if strings.TrimSpace(medication.ID) == "" {
			return ErrMedicationIdentifierMissing
		}
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	store.medications = make([]Medication, 0, len(medications))
	for _, medication := range medications {
		store.medications = append(store.medications, copyMedication(medication))
	}
	store.logs = make([]Log, 0, len(logs))
	for _, entry := range logs {
		entry.ScheduledTime = NormalizeTime(entry.ScheduledTime)
		store.logs = append(store.logs, entry)
	}
	store.invalidate()
	return nil
}

func (store *Store) SetCoupleID(coupleID *string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.coupleID = copyString(coupleID)
}

// PutMedication inserts or fully replaces a medication by identifier.
func (store *Store) PutMedication(medication Medication) error {
	if strings.TrimSpace(medication.ID) == "" {
		return ErrMedicationIdentifierMissing
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	medication = copyMedication(medication)
	for index := range store.medications {
		if store.medications[index].ID == medication.ID {
			store.medications[index] = medication
			store.invalidate()
			return nil
		}
	}
	store.medications = append(store.medications, medication)
	store.invalidate()
	return nil
}

// RemoveMedication drops the medication and every log that references it.
func (store *Store) RemoveMedication(medicationID string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	found := false
	medications := make([]Medication, 0, len(store.medications))
	for _, medication := range store.medications {
		if medication.ID == medicationID {
			found = true
			continue
		}
		medications = append(medications, medication)
	}
	if !found {
		return false
	}
	store.medications = medications

	logs := make([]Log, 0, len(store.logs))
	for _, entry := range store.logs {
		if entry.MedicationID != medicationID {
			logs = append(logs, entry)
		}
	}
	store.logs = logs
	store.invalidate()
	return true
}

func (store *Store) Medications() []Medication {
	store.mu.Lock()
	defer store.mu.Unlock()

	medications := make([]Medication, 0, len(store.medications))
	for _, medication := range store.medications {
		medications = append(medications, copyMedication(medication))
	}
	return medications
}

func (store *Store) Medication(medicationID string) (Medication, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	index := store.medicationIndex(medicationID)
	if index < 0 {
		return Medication{}, false
	}
	return copyMedication(store.medications[index]), true
}

func (store *Store) Logs() []Log {
	store.mu.Lock()
	defer store.mu.Unlock()

	logs := make([]Log, len(store.logs))
	copy(logs, store.logs)
	return logs
}

// Schedule returns today's slots with their matched logs. The result is
// recomputed only after a write.
func (store *Store) Schedule() []Slot {
	store.mu.Lock()
	defer store.mu.Unlock()
	return cloneSlots(store.scheduleLocked())
}

func (store *Store) Summary() Summary {
	store.mu.Lock()
	defer store.mu.Unlock()
	return Summarize(store.scheduleLocked())
}

func (store *Store) Take(ctx context.Context, medicationID string, clock string) (Log, error) {
	return store.Apply(ctx, ActionTake, medicationID, clock)
}

func (store *Store) Skip(ctx context.Context, medicationID string, clock string) (Log, error) {
	return store.Apply(ctx, ActionSkip, medicationID, clock)
}

func (store *Store) Clear(ctx context.Context, medicationID string, clock string) (Log, error) {
	return store.Apply(ctx, ActionClear, medicationID, clock)
}

// Apply updates the log for (medication, time, today) in memory and then
// persists it in the background. The returned log is the optimistic state.
func (store *Store) Apply(ctx context.Context, action Action, medicationID string, clock string) (Log, error) {
	switch action {
	case ActionTake, ActionSkip, ActionClear:
	default:
		return Log{}, ErrInvalidAction
	}
	clock = strings.TrimSpace(clock)
	if !ValidClockTime(clock) {
		return Log{}, fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}

	store.mu.Lock()
	index := store.medicationIndex(medicationID)
	if index < 0 {
		store.mu.Unlock()
		return Log{}, ErrUnknownMedication
	}
	if !scheduledAt(store.medications[index], clock) {
		store.mu.Unlock()
		return Log{}, fmt.Errorf("%w: %q", ErrUnscheduledTime, clock)
	}

	key := KeyFor(medicationID, clock, store.date)
	entry := Log{
		UserID:        store.userID,
		CoupleID:      copyString(store.coupleID),
		MedicationID:  key.MedicationID,
		ScheduledTime: key.Time,
		ScheduledDate: key.Date,
	}

	remaining := make([]Log, 0, len(store.logs)+1)
	for _, existing := range store.logs {
		if existing.Key() == key {
			entry.ID = existing.ID
			entry.Notes = existing.Notes
			entry.CreatedAt = existing.CreatedAt
			continue
		}
		remaining = append(remaining, existing)
	}

	switch action {
	case ActionTake:
		takenAt := store.now()
		entry.TakenAt = &takenAt
	case ActionSkip:
		entry.Skipped = true
	}

	store.logs = append(remaining, entry)
	store.sequences[key]++
	sequence := store.sequences[key]
	store.invalidate()
	localOnly := store.userID == 0
	store.mu.Unlock()

	store.observe(action, ResultApplied)

	if localOnly || store.persister == nil {
		store.notify(ctx, Notice{
			Title:       "Cloud sync skipped",
			Description: "Sign in to sync to cloud.",
			Variant:     NoticeVariantDefault,
		})
		store.observe(action, ResultSkippedSync)
		return entry, nil
	}

	store.inflight.Add(1)
	store.pending.Add(1)
	go store.persist(context.WithoutCancel(ctx), action, key, sequence, entry)
	return entry, nil
}

// Wait blocks until every persistence attempt started so far has finished.
func (store *Store) Wait() {
	store.inflight.Wait()
}

// Pending reports whether persistence attempts are still running.
func (store *Store) Pending() bool {
	return store.pending.Load() > 0
}

func (store *Store) persist(ctx context.Context, action Action, key Key, sequence uint64, entry Log) {
	defer store.inflight.Done()
	defer store.pending.Add(-1)

	lock := store.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if !store.isCurrent(key, sequence) {
		store.observe(action, ResultSuperseded)
		return
	}

	stored, err := store.persister.PersistLog(ctx, entry)
	if err != nil {
		store.notify(ctx, Notice{
			Title:       "Cloud sync failed",
			Description: err.Error(),
			Variant:     NoticeVariantDestructive,
		})
		store.observe(action, ResultFailed)
		return
	}

	store.mu.Lock()
	if store.sequences[key] == sequence {
		for index := range store.logs {
			if store.logs[index].Key() == key {
				store.logs[index].ID = stored.ID
				store.logs[index].CreatedAt = stored.CreatedAt
				break
			}
		}
		store.invalidate()
	}
	store.mu.Unlock()

	store.notify(ctx, Notice{
		Title:       "Saved to cloud",
		Description: syncedDescription(action),
		Variant:     NoticeVariantDefault,
	})
	store.observe(action, ResultPersisted)
}

func syncedDescription(action Action) string {
	switch action {
	case ActionTake:
		return "Medication mark synced."
	case ActionSkip:
		return "Medication skip synced."
	default:
		return "Medication mark cleared."
	}
}

func (store *Store) isCurrent(key Key, sequence uint64) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.sequences[key] == sequence
}

func (store *Store) keyLock(key Key) *sync.Mutex {
	store.mu.Lock()
	defer store.mu.Unlock()

	lock, ok := store.persistLock[key]
	if !ok {
		lock = &sync.Mutex{}
		store.persistLock[key] = lock
	}
	return lock
}

func (store *Store) scheduleLocked() []Slot {
	if !store.cacheValid {
		store.cached = MatchLogs(BuildSchedule(store.medications, store.date), store.logs, store.date)
		store.cacheValid = true
	}
	return store.cached
}

func (store *Store) invalidate() {
	store.cacheValid = false
	store.cached = nil
}

func (store *Store) medicationIndex(medicationID string) int {
	if medicationID == "" {
		return -1
	}
	for index := range store.medications {
		if store.medications[index].ID == medicationID {
			return index
		}
	}
	return -1
}

func scheduledAt(medication Medication, clock string) bool {
	normalized := NormalizeTime(clock)
	for _, scheduled := range medication.Times {
		if NormalizeTime(strings.TrimSpace(scheduled)) == normalized {
			return true
		}
	}
	return false
}

func (store *Store) notify(ctx context.Context, notice Notice) {
	if store.notifier != nil {
		store.notifier.Notify(ctx, notice)
	}
}

func (store *Store) observe(action Action, result Result) {
	if store.observer != nil {
		store.observer.ObserveIntake(action, result)
	}
}

func cloneSlots(slots []Slot) []Slot {
	cloned := make([]Slot, len(slots))
	for index, slot := range slots {
		slot.Medication = copyMedication(slot.Medication)
		if slot.Log != nil {
			entry := *slot.Log
			slot.Log = &entry
		}
		cloned[index] = slot
	}
	return cloned
}

func copyMedication(medication Medication) Medication {
	times := make([]string, len(medication.Times))
	copy(times, medication.Times)
	medication.Times = times
	return medication
}

func copyString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
