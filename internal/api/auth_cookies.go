package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	authCookieName   = "miffy_auth"
	guestCookieName  = "miffy_guest"
	coupleCookieName = "miffy_couple"

	guestCookieTTL  = 365 * 24 * time.Hour
	coupleCookieTTL = 365 * 24 * time.Hour
)

func (handler *Handler) buildToken(userID uint, ttl time.Duration) (string, error) {
	now := handler.now()
	claims := authClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

func (handler *Handler) setAuthCookie(c *fiber.Ctx, userID uint) error {
	token, err := handler.buildToken(userID, defaultAuthTokenTTL)
	if err != nil {
		return err
	}
	handler.setCookie(c, authCookieName, token, defaultAuthTokenTTL)
	return nil
}

func (handler *Handler) clearAuthCookie(c *fiber.Ctx) {
	handler.expireCookie(c, authCookieName)
	handler.expireCookie(c, coupleCookieName)
}

func (handler *Handler) setCookie(c *fiber.Ctx, name string, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  handler.now().Add(ttl),
	})
}

func (handler *Handler) expireCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  handler.now().Add(-1 * time.Hour),
	})
}

// guestID returns the device's guest identifier, issuing a new one when the
// cookie is missing or malformed.
func (handler *Handler) guestID(c *fiber.Ctx) string {
	raw := strings.TrimSpace(c.Cookies(guestCookieName))
	if parsed, err := uuid.Parse(raw); err == nil {
		return parsed.String()
	}
	guestID := uuid.NewString()
	handler.setCookie(c, guestCookieName, guestID, guestCookieTTL)
	return guestID
}
