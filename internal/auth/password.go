package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt work factor for panel passwords. Logins are
// interactive and rare; the default cost is plenty.
const hashCost = bcrypt.DefaultCost

// ErrEmptyPassword is returned when a blank password is hashed
var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword produces the bcrypt hash stored in users.password_hash
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword checks a login attempt against the stored hash.
// The error is opaque; callers surface the same response for a wrong
// password and an unknown user.
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
