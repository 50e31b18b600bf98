package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed = errors.New("authentication failed: invalid username or password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// AuthService authenticates the single operator account and issues API tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, err error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	username      string
	passwordHash  string // bcrypt hash from configuration
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(username, passwordHash, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		username:      username,
		passwordHash:  passwordHash,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Login verifies the operator credentials and returns a signed JWT.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errors.New("username and password cannot be empty")
	}
	if username != s.username {
		return "", ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrAuthenticationFailed
	}

	token, err := s.generateJWT(username)
	if err != nil {
		return "", ErrTokenGeneration
	}
	return token, nil
}

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	Username string `json:"sub_name"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the operator.
func (s *authService) generateJWT(username string) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "plan-compiler",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
