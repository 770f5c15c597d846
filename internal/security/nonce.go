package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	nonceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	nonceLength   = 32
)

// NewNonce returns a random one-time secret together with its bcrypt hash.
// Only the hash is meant to be stored.
func NewNonce() (string, string, error) {
	nonce, err := RandomString(nonceLength, nonceAlphabet)
	if err != nil {
		return "", "", fmt.Errorf("generate nonce: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(nonce), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hash nonce: %w", err)
	}
	return nonce, string(hash), nil
}

func NonceMatches(hash string, nonce string) bool {
	if hash == "" || nonce == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(nonce)) == nil
}
