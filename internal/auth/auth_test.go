package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordGate(t *testing.T) {
	t.Run("plaintext", func(t *testing.T) {
		gate, err := NewPasswordGate("", "bodrum2026")
		if err != nil {
			t.Fatalf("NewPasswordGate failed: %v", err)
		}
		if !gate.Enabled() {
			t.Fatal("expected gate to be enabled")
		}
		if err := gate.Check(" bodrum2026 "); err != nil {
			t.Errorf("Check with correct password failed: %v", err)
		}
		if err := gate.Check("wrong"); !errors.Is(err, ErrInvalidPassword) {
			t.Errorf("expected ErrInvalidPassword, got %v", err)
		}
	})

	t.Run("hash", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
		if err != nil {
			t.Fatal(err)
		}
		gate, err := NewPasswordGate(string(hash), "ignored")
		if err != nil {
			t.Fatalf("NewPasswordGate failed: %v", err)
		}
		if err := gate.Check("secret"); err != nil {
			t.Errorf("Check failed: %v", err)
		}
		if err := gate.Check("ignored"); err == nil {
			t.Error("plaintext must be ignored when a hash is configured")
		}
	})

	t.Run("bad hash", func(t *testing.T) {
		if _, err := NewPasswordGate("not-a-hash", ""); err == nil {
			t.Error("expected error for malformed hash")
		}
	})

	t.Run("disabled", func(t *testing.T) {
		gate, err := NewPasswordGate("", "")
		if err != nil {
			t.Fatal(err)
		}
		if gate.Enabled() {
			t.Error("expected gate to be disabled")
		}
		if err := gate.Check("anything"); err != nil {
			t.Errorf("disabled gate rejected a password: %v", err)
		}
	})
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, expiresAt, err := m.Generate("laptop")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Errorf("unexpected expiry %v", expiresAt)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Subject != "laptop" || claims.SessionID == "" {
		t.Errorf("unexpected claims %+v", claims)
	}

	other := NewJWTManager("other-secret", time.Hour)
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	expired := NewJWTManager("test-secret", -time.Minute)
	token, _, err = expired.Generate("laptop")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
