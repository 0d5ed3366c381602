// Package password hashes account credentials with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest input bcrypt accepts.
const MaxLength = 72

var (
	ErrEmpty    = errors.New("password cannot be empty")
	ErrTooLong  = fmt.Errorf("password cannot exceed %d bytes", MaxLength)
	ErrMismatch = errors.New("password does not match")
)

func Hash(plain string) (string, error) {
	if err := check(plain); err != nil {
		return "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashed), nil
}

// Verify returns ErrMismatch for a wrong password and a wrapped error for a corrupt hash.
func Verify(plain, hashed string) error {
	if plain == "" || hashed == "" {
		return ErrMismatch
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("failed to verify password: %w", err)
	}
}

func check(plain string) error {
	switch {
	case plain == "":
		return ErrEmpty
	case len(plain) > MaxLength:
		return ErrTooLong
	}

	return nil
}
