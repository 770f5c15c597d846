package schedule

import (
	"testing"
	"time"
)

func TestSummarizeNoLogs(t *testing.T) {
	summary := Summarize(MatchLogs(BuildSchedule([]Medication{morningVitamin()}, testDate), nil, testDate))
	if summary != (Summary{Total: 2, Completed: 0, Skipped: 0, Pending: 2}) {
		t.Fatalf("expected 0/0/2, got %+v", summary)
	}
}

func TestSummarizeCountsAddUp(t *testing.T) {
	takenAt := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	medications := []Medication{
		{ID: "a", Times: []string{"08:00", "12:00", "20:00"}},
		{ID: "b", Times: []string{"08:00", "22:00"}},
	}
	logs := []Log{
		{MedicationID: "a", ScheduledTime: "08:00:00", ScheduledDate: testDate, TakenAt: &takenAt},
		{MedicationID: "a", ScheduledTime: "12:00:00", ScheduledDate: testDate, Skipped: true},
		{MedicationID: "b", ScheduledTime: "22:00:00", ScheduledDate: testDate},
		{MedicationID: "missing", ScheduledTime: "08:00:00", ScheduledDate: testDate, TakenAt: &takenAt},
	}

	summary := Summarize(MatchLogs(BuildSchedule(medications, testDate), logs, testDate))
	if summary.Completed != 1 || summary.Skipped != 1 || summary.Pending != 3 || summary.Total != 5 {
		t.Fatalf("expected 1/1/3 of 5, got %+v", summary)
	}
	if summary.Completed+summary.Skipped+summary.Pending != summary.Total {
		t.Fatalf("expected counts to add up, got %+v", summary)
	}
}

func TestSummaryPercent(t *testing.T) {
	if (Summary{}).Percent() != 0 {
		t.Fatal("expected empty schedule to report 0 percent")
	}
	if percent := (Summary{Total: 3, Completed: 1, Pending: 2}).Percent(); percent != 33 {
		t.Fatalf("expected 33 percent, got %d", percent)
	}
	if percent := (Summary{Total: 2, Completed: 2}).Percent(); percent != 100 {
		t.Fatalf("expected 100 percent, got %d", percent)
	}
}
