package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return NewAuthService("coach", string(hash), "test-secret", time.Hour)
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newTestAuthService(t)

	token, err := svc.Login(context.Background(), "coach", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(svc.GetJWTSecret()), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !parsed.Valid {
		t.Error("expected a valid token")
	}
	if claims.Username != "coach" || claims.Subject != "coach" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Errorf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "coach", "wrong"},
		{"unknown user", "stranger", "correct horse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tc.username, tc.password); !errors.Is(err, ErrAuthenticationFailed) {
				t.Errorf("expected ErrAuthenticationFailed, got %v", err)
			}
		})
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc := newTestAuthService(t)
	if _, err := svc.Login(context.Background(), "", ""); err == nil {
		t.Error("expected error for empty credentials")
	}
}
