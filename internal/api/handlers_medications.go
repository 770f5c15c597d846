package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/services"
)

type intakeRequest struct {
	Time   string `json:"time"`
	Action string `json:"action"`
}

func (handler *Handler) ownerOrGuest(c *fiber.Ctx) services.Owner {
	owner, ok := currentOwner(c)
	if !ok {
		return services.GuestOwner(handler.guestID(c))
	}
	return owner
}

func (handler *Handler) ListMedications(c *fiber.Ctx) error {
	medications, err := handler.medications.List(handler.ownerOrGuest(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"medications": medications,
		"colors":      models.MedicationColors(),
	})
}

func (handler *Handler) CreateMedication(c *fiber.Ctx) error {
	var input services.MedicationInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	medication, err := handler.medications.Create(c.UserContext(), handler.ownerOrGuest(c), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(medication)
}

func (handler *Handler) UpdateMedication(c *fiber.Ctx) error {
	var input services.MedicationInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	medication, err := handler.medications.Update(c.UserContext(), handler.ownerOrGuest(c), routeParam(c, "id"), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(medication)
}

func (handler *Handler) DeleteMedication(c *fiber.Ctx) error {
	if err := handler.medications.Delete(c.UserContext(), handler.ownerOrGuest(c), routeParam(c, "id")); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) MedicationSchedule(c *fiber.Ctx) error {
	view, err := handler.intake.Schedule(handler.ownerOrGuest(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(view)
}

// RecordIntake answers from the optimistic local state. Whether the write
// reached the database is reported later through the notice feed.
func (handler *Handler) RecordIntake(c *fiber.Ctx) error {
	var input intakeRequest
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	owner := handler.ownerOrGuest(c)
	entry, err := handler.intake.Apply(c.UserContext(), owner, input.Action, routeParam(c, "id"), input.Time)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	view, err := handler.intake.Schedule(owner)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"log":      entry,
		"schedule": view,
	})
}

func (handler *Handler) ReloadSchedule(c *fiber.Ctx) error {
	owner := handler.ownerOrGuest(c)
	handler.intake.Reload(owner)
	view, err := handler.intake.Schedule(owner)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(view)
}
