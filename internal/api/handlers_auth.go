package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/miffy/internal/services"
)

type signInLinkRequest struct {
	Email string `json:"email" form:"email"`
}

// RequestSignInLink answers the same way whether or not the address already
// has an account.
func (handler *Handler) RequestSignInLink(c *fiber.Ctx) error {
	var input signInLinkRequest
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	email, err := services.NormalizeSignInEmail(input.Email)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid email")
	}
	limiterKey := requestLimiterKey(c) + "|" + email
	if !handler.linkLimiter.allow(limiterKey, handler.now()) {
		return apiError(c, fiber.StatusTooManyRequests, "too many sign-in link requests")
	}

	if err := handler.auth.RequestSignInLink(c.UserContext(), email); err != nil {
		if errors.Is(err, services.ErrSignInLinkSendFailed) {
			handler.logger.WithError(err).Warn("sign-in link delivery failed")
			return apiError(c, fiber.StatusBadGateway, "could not send sign-in link")
		}
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"ok": true})
}

// SignInCallback redeems a link and starts the session. Browsers are sent
// back to the site root; JSON clients get the user.
func (handler *Handler) SignInCallback(c *fiber.Ctx) error {
	user, err := handler.auth.ConsumeSignInLink(c.Query("token"))
	if err != nil {
		if !errors.Is(err, services.ErrSignInLinkInvalid) {
			return handler.respondServiceError(c, err)
		}
		if acceptsJSON(c) {
			return apiError(c, fiber.StatusUnauthorized, "invalid or expired link")
		}
		return c.Redirect("/?auth_error=link_invalid", fiber.StatusSeeOther)
	}

	if err := handler.setAuthCookie(c, user.ID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	handler.logger.WithUserID(user.ID).Info("user signed in")
	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"user": user})
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	memberships, err := handler.couples.Memberships(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":          user,
		"couples":       memberships,
		"active_couple": activeCoupleID(c),
	})
}
