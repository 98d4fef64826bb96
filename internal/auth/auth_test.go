package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenService("secret", "foodgram", time.Hour)
	id := uuid.New()

	token, err := s.GenerateToken(id, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	p, err := s.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.UserID != id || !p.IsAdmin() {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenService("other", "foodgram", time.Hour).GenerateToken(uuid.New(), domain.RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewTokenService("secret", "foodgram", time.Hour).ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	s := NewTokenService("secret", "foodgram", time.Minute)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := s.GenerateToken(uuid.New(), domain.RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	s.now = time.Now
	if _, err := s.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestParseTokenRejectsOtherIssuer(t *testing.T) {
	token, err := NewTokenService("secret", "someone-else", time.Hour).GenerateToken(uuid.New(), domain.RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewTokenService("secret", "foodgram", time.Hour).ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected issuer mismatch to be rejected, got %v", err)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Fatal("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestPrincipalContext(t *testing.T) {
	if PrincipalFromContext(context.Background()) != nil {
		t.Fatal("expected anonymous context")
	}
	p := &domain.Principal{UserID: uuid.New(), Role: domain.RoleUser}
	if got := PrincipalFromContext(WithPrincipal(context.Background(), p)); got != p {
		t.Fatalf("expected principal back, got %+v", got)
	}
}
