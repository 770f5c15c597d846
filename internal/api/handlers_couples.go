package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/miffy/internal/services"
)

type activeCoupleRequest struct {
	CoupleID string `json:"couple_id"`
}

func (handler *Handler) CreateCouple(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	couple, err := handler.couples.Create(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.setCookie(c, coupleCookieName, couple.ID, coupleCookieTTL)
	return c.Status(fiber.StatusCreated).JSON(couple)
}

func (handler *Handler) JoinCouple(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	member, err := handler.couples.Join(user.ID, routeParam(c, "id"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(member)
}

// SetActiveCouple remembers the couple on this device. An empty id clears it.
func (handler *Handler) SetActiveCouple(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input activeCoupleRequest
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if input.CoupleID == "" {
		handler.expireCookie(c, coupleCookieName)
		return c.JSON(fiber.Map{"active_couple": nil})
	}
	member, err := handler.couples.RequireMember(user.ID, input.CoupleID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.setCookie(c, coupleCookieName, member.CoupleID, coupleCookieTTL)
	return c.JSON(fiber.Map{"active_couple": member.CoupleID, "role": member.Role})
}

func (handler *Handler) CoupleMembers(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	members, err := handler.couples.Members(user.ID, routeParam(c, "id"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

func (handler *Handler) CoupleMoods(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	items, err := handler.moods.CoupleFeed(user.ID, routeParam(c, "id"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"moods": items})
}

func (handler *Handler) CoupleMoodStream(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithCancel(context.Background())
	subscription, err := handler.moods.SubscribeCouple(ctx, user.ID, routeParam(c, "id"))
	if err != nil {
		cancel()
		return handler.respondServiceError(c, err)
	}
	return handler.streamEvents(c, subscription, cancel, "mood")
}

func (handler *Handler) ListActivities(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	activities, err := handler.activities.List(user.ID, routeParam(c, "id"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"activities": activities})
}

func (handler *Handler) CreateActivity(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.ActivityInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	activity, err := handler.activities.Create(user.ID, routeParam(c, "id"), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(activity)
}

func (handler *Handler) UpdateActivity(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	activityID, err := parseUintParam(c, "activityID")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	var input services.ActivityInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	activity, err := handler.activities.Update(user.ID, routeParam(c, "id"), activityID, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(activity)
}

func (handler *Handler) DeleteActivity(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	activityID, err := parseUintParam(c, "activityID")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	if err := handler.activities.Delete(user.ID, routeParam(c, "id"), activityID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
