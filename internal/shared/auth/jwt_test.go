package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	v := NewVerifier("secret", nil)
	token, err := v.Sign(Claims{Sub: "user-1", Email: "a@example.com", Role: "editor"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Sub != "user-1" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Role != RoleUser {
		t.Fatalf("unknown roles must normalize to user, got %q", claims.Role)
	}
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	token, err := NewVerifier("one", nil).Sign(Claims{Sub: "user-1", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := NewVerifier("two", nil).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issued := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := issued
	v := NewVerifier("secret", func() time.Time { return now })

	token, err := v.Sign(Claims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	now = issued.Add(defaultTTL + time.Second)
	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestVerifyRejectsAlgNone(t *testing.T) {
	v := NewVerifier("secret", nil)
	token, err := v.Sign(Claims{Sub: "admin-1", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[0] = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	if _, err := v.Verify(strings.Join(parts, ".")); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected alg none to be rejected, got %v", err)
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	v := NewVerifier("", nil)
	for _, token := range []string{"", "a.b", "a.b.c", "..."} {
		if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q) expected ErrInvalidToken, got %v", token, err)
		}
	}
}
