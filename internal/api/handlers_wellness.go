package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/miffy/internal/services"
)

func (handler *Handler) ListMoods(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	entries, err := handler.moods.Recent(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"moods":   entries,
		"catalog": handler.moods.Catalog(),
	})
}

func (handler *Handler) CurrentMood(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	entry, found, err := handler.moods.Current(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if !found {
		return c.JSON(fiber.Map{"mood": nil})
	}
	return c.JSON(fiber.Map{"mood": entry})
}

func (handler *Handler) RecordMood(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.MoodInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	entry, err := handler.moods.Record(c.UserContext(), user.ID, activeCoupleID(c), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (handler *Handler) ListSleep(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	entries, err := handler.sleep.Recent(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"entries":          entries,
		"average_duration": services.AverageSleepDuration(entries),
	})
}

func (handler *Handler) SaveSleep(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.SleepInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	entry, err := handler.sleep.Save(c.UserContext(), user.ID, activeCoupleID(c), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(entry)
}

func (handler *Handler) DeleteSleep(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	entryID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	if err := handler.sleep.Delete(user.ID, entryID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListCalendar returns one month of events. Year and month default to the
// current month in the service location.
func (handler *Handler) ListCalendar(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	year, month, err := handler.parseMonthQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid month")
	}
	events, err := handler.calendar.ListMonth(user.ID, year, month)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"year":   year,
		"month":  int(month),
		"events": events,
	})
}

func (handler *Handler) parseMonthQuery(c *fiber.Ctx) (int, time.Month, error) {
	now := handler.now().In(handler.location)
	year, month := now.Year(), now.Month()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 9999 {
			return 0, 0, strconv.ErrRange
		}
		year = parsed
	}
	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, strconv.ErrRange
		}
		month = time.Month(parsed)
	}
	return year, month, nil
}

func (handler *Handler) UpcomingCalendar(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	events, err := handler.calendar.Upcoming(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"events": events})
}

func (handler *Handler) CreateCalendarEvent(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.CalendarEventInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	event, err := handler.calendar.Create(c.UserContext(), user.ID, activeCoupleID(c), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (handler *Handler) UpdateCalendarEvent(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	eventID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	var input services.CalendarEventInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	event, err := handler.calendar.Update(c.UserContext(), user.ID, eventID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(event)
}

func (handler *Handler) DeleteCalendarEvent(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	eventID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	if err := handler.calendar.Delete(user.ID, eventID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) ListTodos(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	items, err := handler.todos.List(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"todos": items})
}

func (handler *Handler) CreateTodo(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.TodoInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	item, err := handler.todos.Create(c.UserContext(), user.ID, activeCoupleID(c), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (handler *Handler) UpdateTodo(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	itemID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	var input services.TodoInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	item, err := handler.todos.Update(c.UserContext(), user.ID, itemID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(item)
}

func (handler *Handler) ToggleTodo(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	itemID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	item, err := handler.todos.Toggle(c.UserContext(), user.ID, itemID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(item)
}

func (handler *Handler) DeleteTodo(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	itemID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	if err := handler.todos.Delete(user.ID, itemID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
