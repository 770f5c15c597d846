package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/schedule"
)

var (
	ErrMedicationNotFound     = errors.New("medication not found")
	ErrMedicationCreateFailed = errors.New("create medication failed")
	ErrMedicationUpdateFailed = errors.New("update medication failed")
	ErrMedicationDeleteFailed = errors.New("delete medication failed")
)

type MedicationRepository interface {
	FindByIDForUser(userID uint, medicationID string) (models.Medication, bool, error)
	Create(medication *models.Medication) error
	Update(medication *models.Medication) (bool, error)
	DeleteCascade(userID uint, medicationID string) (bool, error)
}

type MedicationInput struct {
	Name      string   `json:"name" validate:"required,max=120"`
	Dosage    string   `json:"dosage" validate:"required,max=120"`
	Frequency string   `json:"frequency" validate:"oneof=daily weekly as_needed"`
	Times     []string `json:"times" validate:"required,min=1,max=24,dive,clocktime"`
	Color     string   `json:"color" validate:"medcolor"`
	Notes     string   `json:"notes" validate:"max=1000"`
}

// MedicationService writes medications and keeps the owner's schedule store
// in step with what was written.
type MedicationService struct {
	medications MedicationRepository
	intake      *IntakeService
	notices     *NoticeFeed
	now         func() time.Time
}

func NewMedicationService(medications MedicationRepository, intake *IntakeService, notices *NoticeFeed) *MedicationService {
	return &MedicationService{
		medications: medications,
		intake:      intake,
		notices:     notices,
		now:         time.Now,
	}
}

func normalizeMedicationInput(input MedicationInput) MedicationInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Dosage = strings.TrimSpace(input.Dosage)
	input.Notes = strings.TrimSpace(input.Notes)
	input.Frequency = strings.ToLower(strings.TrimSpace(input.Frequency))
	if input.Frequency == "" {
		input.Frequency = models.FrequencyDaily
	}
	input.Color = strings.TrimSpace(input.Color)
	if input.Color == "" {
		input.Color = models.DefaultMedicationColor
	}
	times := make([]string, 0, len(input.Times))
	for _, clock := range input.Times {
		times = append(times, strings.TrimSpace(clock))
	}
	input.Times = times
	return input
}

func (service *MedicationService) List(owner Owner) ([]schedule.Medication, error) {
	store, err := service.intake.Session(owner)
	if err != nil {
		return nil, err
	}
	return store.Medications(), nil
}

// Create persists the medication first so that it enters the schedule with
// its stored identifier. Guests get a locally generated one.
func (service *MedicationService) Create(ctx context.Context, owner Owner, input MedicationInput) (schedule.Medication, error) {
	input = normalizeMedicationInput(input)
	if err := validateInput(input); err != nil {
		return schedule.Medication{}, err
	}
	store, err := service.intake.Session(owner)
	if err != nil {
		return schedule.Medication{}, err
	}

	if !owner.Authenticated() {
		medication := schedule.Medication{
			ID:        uuid.NewString(),
			Name:      input.Name,
			Dosage:    input.Dosage,
			Frequency: input.Frequency,
			Times:     input.Times,
			Color:     input.Color,
			Notes:     input.Notes,
			CreatedAt: service.now(),
		}
		if err := store.PutMedication(medication); err != nil {
			return schedule.Medication{}, err
		}
		service.notify(ctx, owner, syncSkippedNotice())
		return medication, nil
	}

	record := models.Medication{
		UserID:    owner.UserID,
		CoupleID:  copyStringPointer(owner.CoupleID),
		Name:      input.Name,
		Dosage:    input.Dosage,
		Frequency: input.Frequency,
		Times:     input.Times,
		Color:     input.Color,
		Notes:     input.Notes,
	}
	if err := service.medications.Create(&record); err != nil {
		service.notify(ctx, owner, syncFailedNotice(err))
		return schedule.Medication{}, fmt.Errorf("%w: %v", ErrMedicationCreateFailed, err)
	}

	medication := toScheduleMedication(record)
	if err := store.PutMedication(medication); err != nil {
		return schedule.Medication{}, err
	}
	service.notify(ctx, owner, savedNotice("Medication saved."))
	return medication, nil
}

// Update replaces every mutable field of the medication.
func (service *MedicationService) Update(ctx context.Context, owner Owner, medicationID string, input MedicationInput) (schedule.Medication, error) {
	input = normalizeMedicationInput(input)
	if err := validateInput(input); err != nil {
		return schedule.Medication{}, err
	}
	store, err := service.intake.Session(owner)
	if err != nil {
		return schedule.Medication{}, err
	}

	if !owner.Authenticated() {
		existing, ok := store.Medication(medicationID)
		if !ok {
			return schedule.Medication{}, ErrMedicationNotFound
		}
		existing.Name = input.Name
		existing.Dosage = input.Dosage
		existing.Frequency = input.Frequency
		existing.Times = input.Times
		existing.Color = input.Color
		existing.Notes = input.Notes
		if err := store.PutMedication(existing); err != nil {
			return schedule.Medication{}, err
		}
		service.notify(ctx, owner, syncSkippedNotice())
		return existing, nil
	}

	record, found, err := service.medications.FindByIDForUser(owner.UserID, medicationID)
	if err != nil {
		return schedule.Medication{}, fmt.Errorf("%w: %v", ErrMedicationUpdateFailed, err)
	}
	if !found {
		return schedule.Medication{}, ErrMedicationNotFound
	}
	record.CoupleID = copyStringPointer(owner.CoupleID)
	record.Name = input.Name
	record.Dosage = input.Dosage
	record.Frequency = input.Frequency
	record.Times = input.Times
	record.Color = input.Color
	record.Notes = input.Notes

	updated, err := service.medications.Update(&record)
	if err != nil {
		service.notify(ctx, owner, syncFailedNotice(err))
		return schedule.Medication{}, fmt.Errorf("%w: %v", ErrMedicationUpdateFailed, err)
	}
	if !updated {
		return schedule.Medication{}, ErrMedicationNotFound
	}

	medication := toScheduleMedication(record)
	if err := store.PutMedication(medication); err != nil {
		return schedule.Medication{}, err
	}
	service.notify(ctx, owner, savedNotice("Medication updated."))
	return medication, nil
}

// Delete removes the medication together with its logs.
func (service *MedicationService) Delete(ctx context.Context, owner Owner, medicationID string) error {
	store, err := service.intake.Session(owner)
	if err != nil {
		return err
	}

	if owner.Authenticated() {
		deleted, err := service.medications.DeleteCascade(owner.UserID, medicationID)
		if err != nil {
			service.notify(ctx, owner, syncFailedNotice(err))
			return fmt.Errorf("%w: %v", ErrMedicationDeleteFailed, err)
		}
		if !deleted {
			return ErrMedicationNotFound
		}
		store.RemoveMedication(medicationID)
		service.notify(ctx, owner, savedNotice("Medication removed."))
		return nil
	}

	if !store.RemoveMedication(medicationID) {
		return ErrMedicationNotFound
	}
	return nil
}

func (service *MedicationService) notify(ctx context.Context, owner Owner, notice models.Notice) {
	if service.notices != nil {
		service.notices.Push(ctx, owner.Key, notice)
	}
}

func syncSkippedNotice() models.Notice {
	return models.Notice{
		Title:       "Cloud sync skipped",
		Description: "Sign in to sync to cloud.",
		Variant:     models.NoticeVariantDefault,
	}
}

func syncFailedNotice(err error) models.Notice {
	return models.Notice{
		Title:       "Cloud sync failed",
		Description: err.Error(),
		Variant:     models.NoticeVariantDestructive,
	}
}
