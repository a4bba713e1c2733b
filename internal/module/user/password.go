package user

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength is the registration password policy. bcrypt
// truncates input at 72 bytes, so there is an upper bound too.
const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

// HashPassword validates the password policy and returns a bcrypt hash.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
