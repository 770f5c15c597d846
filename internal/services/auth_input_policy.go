package services

import (
	"errors"
	"net/mail"
	"strings"
)

var ErrAuthEmailInvalid = errors.New("auth email invalid")

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return ""
	}
	return email
}

func NormalizeSignInEmail(raw string) (string, error) {
	email := NormalizeAuthEmail(raw)
	if email == "" {
		return "", ErrAuthEmailInvalid
	}
	return email, nil
}

// DisplayNameFromEmail is the default display name for a new account.
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
