package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPassword is returned for a wrong password. There is no lockout.
var ErrInvalidPassword = errors.New("Incorrect password. Access denied.")

// PasswordGate checks the shared dashboard password against a bcrypt hash.
type PasswordGate struct {
	hash []byte
}

// NewPasswordGate creates a gate from either a bcrypt hash or a plaintext
// password, which is hashed once here. Both empty disables the gate.
func NewPasswordGate(hash, plaintext string) (*PasswordGate, error) {
	switch {
	case hash != "":
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("failed to parse password hash: %w", err)
		}
		return &PasswordGate{hash: []byte(hash)}, nil
	case plaintext != "":
		h, err := HashPassword(plaintext)
		if err != nil {
			return nil, err
		}
		return &PasswordGate{hash: []byte(h)}, nil
	}
	return &PasswordGate{}, nil
}

// Enabled reports whether a password is required.
func (g *PasswordGate) Enabled() bool {
	return len(g.hash) > 0
}

// Check verifies password. Surrounding whitespace is ignored.
func (g *PasswordGate) Check(password string) error {
	if !g.Enabled() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(strings.TrimSpace(password))); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// HashPassword returns the bcrypt hash of password, for the config file.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}
