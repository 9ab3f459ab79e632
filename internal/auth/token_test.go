package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/inboxinvader/inboxinvader/internal/config"
)

func newTestTokenService(ttl time.Duration) *TokenService {
	return NewTokenService(config.TokenConfig{
		Secret:   "test-secret",
		TokenTTL: ttl,
		Issuer:   "inboxinvader-test",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(time.Hour)

	token, err := svc.Generate("user-1", "alice")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user_id = %q", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("username = %q", claims.Username)
	}
}

func TestTokenExpired(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(-time.Minute)

	token, err := svc.Generate("user-1", "alice")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(time.Hour)
	other := NewTokenService(config.TokenConfig{Secret: "different", TokenTTL: time.Hour})

	token, err := svc.Generate("user-1", "alice")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := other.Validate(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService(time.Hour)

	if _, err := svc.Validate("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
