package api

import (
	"net/http"
	"testing"

	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/schedule"
	"github.com/terraincognita07/miffy/internal/services"
)

type scheduleResponse struct {
	Date    string           `json:"date"`
	Slots   []schedule.Slot  `json:"slots"`
	Summary schedule.Summary `json:"summary"`
	Percent int              `json:"percent"`
}

func createMedication(t *testing.T, env testApp, cookie *http.Cookie, input services.MedicationInput) (schedule.Medication, *http.Response) {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/medications", input, cookie)
	defer response.Body.Close()
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected create status 201, got %d: %s", response.StatusCode, readAPIError(t, response.Body))
	}
	var medication schedule.Medication
	decodeJSON(t, response.Body, &medication)
	return medication, response
}

func listNotices(t *testing.T, env testApp, cookie *http.Cookie) []models.Notice {
	t.Helper()

	response := env.do(t, http.MethodGet, "/api/notices", nil, cookie)
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected notices status 200, got %d", response.StatusCode)
	}
	var payload struct {
		Notices []models.Notice `json:"notices"`
	}
	decodeJSON(t, response.Body, &payload)
	return payload.Notices
}

func TestGuestMedicationFlowStaysLocal(t *testing.T) {
	env := newTestApp(t, nil)

	medication, response := createMedication(t, env, nil, services.MedicationInput{
		Name:   "Vitamin D",
		Dosage: "1000 IU",
		Times:  []string{"08:00", "20:00"},
	})
	guest := responseCookie(response.Cookies(), guestCookieName)
	if guest == nil || guest.Value == "" {
		t.Fatal("expected guest cookie on first request")
	}
	if medication.ID == "" {
		t.Fatal("expected locally generated medication id")
	}
	if medication.Frequency != models.FrequencyDaily || medication.Color != models.DefaultMedicationColor {
		t.Fatalf("expected defaults applied, got frequency=%q color=%q", medication.Frequency, medication.Color)
	}

	take := env.do(t, http.MethodPost, "/api/medications/"+medication.ID+"/intake", map[string]string{
		"time":   "08:00",
		"action": "take",
	}, guest)
	defer take.Body.Close()
	if take.StatusCode != http.StatusOK {
		t.Fatalf("expected intake status 200, got %d: %s", take.StatusCode, readAPIError(t, take.Body))
	}
	var intake struct {
		Log      schedule.Log     `json:"log"`
		Schedule scheduleResponse `json:"schedule"`
	}
	decodeJSON(t, take.Body, &intake)
	if intake.Log.TakenAt == nil || intake.Log.ScheduledTime != "08:00:00" {
		t.Fatalf("expected taken log at 08:00:00, got %#v", intake.Log)
	}
	if intake.Schedule.Summary.Completed != 1 || intake.Schedule.Summary.Pending != 1 {
		t.Fatalf("expected 1 completed and 1 pending, got %#v", intake.Schedule.Summary)
	}
	if intake.Schedule.Percent != 50 {
		t.Fatalf("expected 50 percent, got %d", intake.Schedule.Percent)
	}

	notices := listNotices(t, env, guest)
	if len(notices) == 0 || notices[0].Title != "Cloud sync skipped" {
		t.Fatalf("expected newest notice to report skipped sync, got %#v", notices)
	}

	other := env.do(t, http.MethodGet, "/api/medications/schedule", nil)
	defer other.Body.Close()
	var otherSchedule scheduleResponse
	decodeJSON(t, other.Body, &otherSchedule)
	if len(otherSchedule.Slots) != 0 {
		t.Fatalf("expected a new device to see an empty schedule, got %d slots", len(otherSchedule.Slots))
	}
}

func TestMedicationCreateRejectsInvalidInput(t *testing.T) {
	env := newTestApp(t, nil)

	cases := []struct {
		name  string
		input services.MedicationInput
	}{
		{name: "missing name", input: services.MedicationInput{Dosage: "5mg", Times: []string{"08:00"}}},
		{name: "no times", input: services.MedicationInput{Name: "Iron", Dosage: "5mg"}},
		{name: "bad time", input: services.MedicationInput{Name: "Iron", Dosage: "5mg", Times: []string{"25:00"}}},
		{name: "bad color", input: services.MedicationInput{Name: "Iron", Dosage: "5mg", Times: []string{"08:00"}, Color: "bg-black"}},
		{name: "bad frequency", input: services.MedicationInput{Name: "Iron", Dosage: "5mg", Times: []string{"08:00"}, Frequency: "hourly"}},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			response := env.do(t, http.MethodPost, "/api/medications", testCase.input)
			defer response.Body.Close()
			if response.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", response.StatusCode)
			}
		})
	}
}

func TestIntakeRejectsUnknownActionAndMedication(t *testing.T) {
	env := newTestApp(t, nil)
	medication, response := createMedication(t, env, nil, services.MedicationInput{
		Name:   "Iron",
		Dosage: "5mg",
		Times:  []string{"09:00"},
	})
	guest := responseCookie(response.Cookies(), guestCookieName)

	badAction := env.do(t, http.MethodPost, "/api/medications/"+medication.ID+"/intake", map[string]string{
		"time":   "09:00",
		"action": "snooze",
	}, guest)
	defer badAction.Body.Close()
	if badAction.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown action, got %d", badAction.StatusCode)
	}

	unknown := env.do(t, http.MethodPost, "/api/medications/missing/intake", map[string]string{
		"time":   "09:00",
		"action": "take",
	}, guest)
	defer unknown.Body.Close()
	if unknown.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown medication, got %d", unknown.StatusCode)
	}
}

func TestSignedInIntakePersistsAcrossReload(t *testing.T) {
	env := newTestApp(t, nil)
	cookie := env.signIn(t, "persist@example.com")

	medication, _ := createMedication(t, env, cookie, services.MedicationInput{
		Name:   "Magnesium",
		Dosage: "200mg",
		Times:  []string{"21:00"},
	})

	skip := env.do(t, http.MethodPost, "/api/medications/"+medication.ID+"/intake", map[string]string{
		"time":   "21:00",
		"action": "skip",
	}, cookie)
	skip.Body.Close()
	if skip.StatusCode != http.StatusOK {
		t.Fatalf("expected intake status 200, got %d", skip.StatusCode)
	}
	env.handler.Drain()

	reload := env.do(t, http.MethodPost, "/api/medications/schedule/reload", nil, cookie)
	defer reload.Body.Close()
	if reload.StatusCode != http.StatusOK {
		t.Fatalf("expected reload status 200, got %d", reload.StatusCode)
	}
	var view scheduleResponse
	decodeJSON(t, reload.Body, &view)
	if len(view.Slots) != 1 || view.Slots[0].Log == nil {
		t.Fatalf("expected reloaded slot with its log, got %#v", view.Slots)
	}
	if !view.Slots[0].Log.Skipped || view.Slots[0].Log.ID == 0 {
		t.Fatalf("expected persisted skipped log, got %#v", view.Slots[0].Log)
	}
	if view.Summary.Skipped != 1 {
		t.Fatalf("expected 1 skipped, got %#v", view.Summary)
	}

	notices := listNotices(t, env, cookie)
	if len(notices) == 0 || notices[0].Title != "Saved to cloud" || notices[0].Description != "Medication skip synced." {
		t.Fatalf("expected newest notice to confirm the skip, got %#v", notices)
	}
}

func TestSignedInMedicationUpdateAndDelete(t *testing.T) {
	env := newTestApp(t, nil)
	cookie := env.signIn(t, "edit@example.com")

	medication, _ := createMedication(t, env, cookie, services.MedicationInput{
		Name:   "Omega 3",
		Dosage: "1 capsule",
		Times:  []string{"08:00"},
	})

	update := env.do(t, http.MethodPut, "/api/medications/"+medication.ID, services.MedicationInput{
		Name:   "Omega 3",
		Dosage: "2 capsules",
		Times:  []string{"08:00", "18:00"},
		Color:  "bg-blue-400",
	}, cookie)
	defer update.Body.Close()
	if update.StatusCode != http.StatusOK {
		t.Fatalf("expected update status 200, got %d: %s", update.StatusCode, readAPIError(t, update.Body))
	}
	var updated schedule.Medication
	decodeJSON(t, update.Body, &updated)
	if updated.ID != medication.ID || updated.Dosage != "2 capsules" || len(updated.Times) != 2 {
		t.Fatalf("expected full replace on the same id, got %#v", updated)
	}

	remove := env.do(t, http.MethodDelete, "/api/medications/"+medication.ID, nil, cookie)
	remove.Body.Close()
	if remove.StatusCode != http.StatusNoContent {
		t.Fatalf("expected delete status 204, got %d", remove.StatusCode)
	}

	again := env.do(t, http.MethodDelete, "/api/medications/"+medication.ID, nil, cookie)
	again.Body.Close()
	if again.StatusCode != http.StatusNotFound {
		t.Fatalf("expected second delete status 404, got %d", again.StatusCode)
	}
}
