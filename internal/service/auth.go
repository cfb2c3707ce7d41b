package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnauthorized is returned for bad credentials and bad or expired tokens.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrAdminDisabled is returned by Login when no admin account is configured.
var ErrAdminDisabled = errors.New("admin login disabled")

// adminRole is the only role a token can carry.
const adminRole = "admin"

// AdminClaims is the JWT payload of an admin session.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService gates plate reassignment, the one admin-only operation.
// There is a single admin account, configured by username and bcrypt hash.
type AuthService struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAuthService constructs an AuthService. An empty username or hash
// disables Login; Verify still rejects every token.
func NewAuthService(username, passwordHash, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		username:     username,
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Enabled reports whether an admin account is configured.
func (s *AuthService) Enabled() bool {
	return s.username != "" && len(s.passwordHash) > 0 && len(s.secret) > 0
}

// Login checks the admin credentials and issues a signed HS256 token.
func (s *AuthService) Login(_ context.Context, username, password string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, fmt.Errorf("service.AuthService.Login: %w", ErrAdminDisabled)
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", time.Time{}, fmt.Errorf("service.AuthService.Login: %w", ErrUnauthorized)
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := AdminClaims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("service.AuthService.Login: sign: %w", err)
	}
	return token, expires, nil
}

// Verify parses a token issued by Login and returns the admin's name.
func (s *AuthService) Verify(token string) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("service.AuthService.Verify: %w", ErrUnauthorized)
	}
	parsed, err := jwt.ParseWithClaims(token, &AdminClaims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("service.AuthService.Verify: %w: %w", ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*AdminClaims)
	if !ok || !parsed.Valid || claims.Role != adminRole {
		return "", fmt.Errorf("service.AuthService.Verify: %w", ErrUnauthorized)
	}
	return claims.Subject, nil
}
