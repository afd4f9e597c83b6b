package store

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the default cost parameter for bcrypt hashing.
const DefaultBcryptCost = 10

// MaxPasswordLength is the maximum allowed password length.
// bcrypt silently truncates at 72 bytes, so we enforce this limit.
const MaxPasswordLength = 72

var (
	// ErrPasswordEmpty is returned when a password is required but empty.
	ErrPasswordEmpty = errors.New("password must not be empty")

	// ErrPasswordTooLong is returned when a password exceeds bcrypt's limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

// bcryptCost is a variable so tests can lower it.
var bcryptCost = DefaultBcryptCost

// HashPassword creates a bcrypt hash of the given password.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if a password matches a bcrypt hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword checks that a password can be hashed.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordEmpty
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// GenerateRandomPassword returns a random URL-safe password.
func GenerateRandomPassword() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
