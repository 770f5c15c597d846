package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/services"
)

const (
	contextUserKey   = "user"
	contextOwnerKey  = "owner"
	contextCoupleKey = "couple"
)

type authClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	rawToken := strings.TrimSpace(c.Cookies(authCookieName))
	if rawToken == "" {
		return nil, errors.New("missing auth cookie")
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	}, jwt.WithTimeFunc(handler.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}

	user, err := handler.auth.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	c.Locals(contextUserKey, user)
	if err := handler.resolveActiveCouple(c, user); err != nil {
		handler.logger.WithError(err).WithUserID(user.ID).Warn("resolve active couple failed")
	}
	return c.Next()
}

// OwnerRequired lets guests through. Signed-in callers act as themselves;
// everyone else acts as the guest bound to the device cookie.
func (handler *Handler) OwnerRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		c.Locals(contextOwnerKey, services.GuestOwner(handler.guestID(c)))
		return c.Next()
	}

	c.Locals(contextUserKey, user)
	if err := handler.resolveActiveCouple(c, user); err != nil {
		handler.logger.WithError(err).WithUserID(user.ID).Warn("resolve active couple failed")
	}
	c.Locals(contextOwnerKey, services.UserOwner(user.ID, activeCoupleID(c)))
	return c.Next()
}

func (handler *Handler) resolveActiveCouple(c *fiber.Ctx, user *models.User) error {
	requested := strings.Clone(strings.TrimSpace(c.Cookies(coupleCookieName)))
	if requested == "" {
		return nil
	}
	coupleID, err := handler.couples.ResolveActive(user.ID, requested)
	if err != nil {
		return err
	}
	if coupleID != nil {
		c.Locals(contextCoupleKey, *coupleID)
	}
	return nil
}

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}

func currentOwner(c *fiber.Ctx) (services.Owner, bool) {
	owner, ok := c.Locals(contextOwnerKey).(services.Owner)
	return owner, ok
}

func activeCoupleID(c *fiber.Ctx) *string {
	coupleID, ok := c.Locals(contextCoupleKey).(string)
	if !ok || coupleID == "" {
		return nil
	}
	return &coupleID
}
