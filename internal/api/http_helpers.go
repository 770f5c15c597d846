package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/miffy/internal/realtime"
	"github.com/terraincognita07/miffy/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || value == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(value), nil
}

// routeParam copies the value out of the request buffer so it can outlive the
// handler.
func routeParam(c *fiber.Ctx, name string) string {
	return strings.Clone(strings.TrimSpace(c.Params(name)))
}

func acceptsJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderAccept)), fiber.MIMEApplicationJSON)
}

// respondServiceError translates service sentinels into HTTP statuses.
// Unknown errors are logged and reported as internal.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrIntakeInvalidAction),
		errors.Is(err, services.ErrIntakeInvalidTime),
		errors.Is(err, services.ErrUnknownMood),
		errors.Is(err, services.ErrCalendarEventRange),
		errors.Is(err, services.ErrAuthEmailInvalid):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrMedicationNotFound),
		errors.Is(err, services.ErrSleepEntryNotFound),
		errors.Is(err, services.ErrCalendarEventNotFound),
		errors.Is(err, services.ErrTodoNotFound),
		errors.Is(err, services.ErrActivityNotFound),
		errors.Is(err, services.ErrCoupleNotFound):
		return apiError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrCoupleMembershipRequired),
		errors.Is(err, services.ErrMoodFeedForbidden):
		return apiError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrSignInLinkInvalid):
		return apiError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, realtime.ErrBrokerClosed):
		return apiError(c, fiber.StatusServiceUnavailable, "live updates unavailable")
	default:
		handler.logger.WithError(err).Errorw("request failed", "method", c.Method(), "path", c.Path())
		return apiError(c, fiber.StatusInternalServerError, "internal error")
	}
}
