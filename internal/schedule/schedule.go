package schedule

import (
	"sort"
	"time"
)

// Medication is the schedule's view of a tracked medication.
type Medication struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Frequency string    `json:"frequency"`
	Times     []string  `json:"times"`
	Color     string    `json:"color"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type LogState string

const (
	StateUntaken LogState = "untaken"
	StateTaken   LogState = "taken"
	StateSkipped LogState = "skipped"
)

// Log is an intake decision for one slot. ScheduledTime is always normalized.
type Log struct {
	ID            uint       `json:"id,omitempty"`
	UserID        uint       `json:"user_id,omitempty"`
	CoupleID      *string    `json:"couple_id,omitempty"`
	MedicationID  string     `json:"medication_id"`
	ScheduledTime string     `json:"scheduled_time"`
	ScheduledDate string     `json:"scheduled_date"`
	TakenAt       *time.Time `json:"taken_at"`
	Skipped       bool       `json:"skipped"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
}

func (entry Log) Key() Key {
	return KeyFor(entry.MedicationID, entry.ScheduledTime, entry.ScheduledDate)
}

func (entry Log) State() LogState {
	switch {
	case entry.TakenAt != nil:
		return StateTaken
	case entry.Skipped:
		return StateSkipped
	default:
		return StateUntaken
	}
}

// Key identifies a slot on a given date. The owning user is implicit in the store.
type Key struct {
	MedicationID string
	Time         string
	Date         string
}

func KeyFor(medicationID string, clock string, date string) Key {
	return Key{MedicationID: medicationID, Time: NormalizeTime(clock), Date: date}
}

type Slot struct {
	Medication Medication `json:"medication"`
	Time       string     `json:"time"`
	Date       string     `json:"date"`
	Log        *Log       `json:"log,omitempty"`
}

func (slot Slot) Key() Key {
	return KeyFor(slot.Medication.ID, slot.Time, slot.Date)
}

func (slot Slot) State() LogState {
	if slot.Log == nil {
		return StateUntaken
	}
	return slot.Log.State()
}

// BuildSchedule expands every (medication, time) pair into a slot for date,
// ordered by normalized time. Ties keep medication order.
func BuildSchedule(medications []Medication, date string) []Slot {
	total := 0
	for _, medication := range medications {
		total += len(medication.Times)
	}

	slots := make([]Slot, 0, total)
	for _, medication := range medications {
		for _, clock := range medication.Times {
			slots = append(slots, Slot{
				Medication: medication,
				Time:       clock,
				Date:       date,
			})
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return NormalizeTime(slots[i].Time) < NormalizeTime(slots[j].Time)
	})
	return slots
}

// MatchLogs attaches to each slot the log with the same key on date. When
// several logs share a key the one loaded last wins.
func MatchLogs(slots []Slot, logs []Log, date string) []Slot {
	byKey := make(map[Key]*Log, len(logs))
	for index := range logs {
		if logs[index].ScheduledDate != date {
			continue
		}
		entry := logs[index]
		byKey[entry.Key()] = &entry
	}

	matched := make([]Slot, len(slots))
	for index, slot := range slots {
		slot.Date = date
		slot.Log = nil
		if entry, ok := byKey[slot.Key()]; ok {
			copied := *entry
			slot.Log = &copied
		}
		matched[index] = slot
	}
	return matched
}
