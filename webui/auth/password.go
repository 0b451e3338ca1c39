// Package auth provides the optional password gate for the web UI: bcrypt
// password verification, cookie-backed sessions, and login rate limiting.
// This file contains the password hashing atoms.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost factor. Cost 12 takes roughly a quarter
// second per hash on current hardware, which is fine for a single-password
// dashboard login.
const DefaultCost = 12

var (
	// ErrEmptyPassword is returned when hashing or verifying an empty password.
	ErrEmptyPassword = errors.New("auth: password cannot be empty")

	// ErrPasswordMismatch is returned when verification fails. It does not
	// reveal whether the stored hash was well-formed.
	ErrPasswordMismatch = errors.New("auth: password does not match")

	// ErrInvalidHash is returned when the stored hash is malformed.
	ErrInvalidHash = errors.New("auth: invalid password hash")
)

// HashPassword creates a bcrypt hash of the given password. The hash embeds
// a random salt and the cost factor, so it is safe to store directly.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash using
// constant-time comparison.
func VerifyPassword(password, hash string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if hash == "" {
		return ErrInvalidHash
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		// Internal bcrypt errors collapse to a mismatch so responses
		// leak nothing about the stored hash.
		return ErrPasswordMismatch
	}
	return nil
}
