package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(pass string) (string, error) {
	const op = "auth.HashPassword"

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(hash), nil
}

// CheckPassword compares against a bcrypt hash, or against plain text for
// credentials written before hashing was introduced.
func CheckPassword(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
