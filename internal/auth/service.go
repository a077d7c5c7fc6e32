package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vibelink/vibelink-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailInUse is returned when signing up with a taken email.
	ErrEmailInUse = errors.New("email already in use")
	// ErrInvalidInput is returned when signup fields fail validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Service provides authentication operations.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Signup creates a new user with a hashed password.
func (s *Service) Signup(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if username == "" || email == "" || password == "" {
		return ErrInvalidInput
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	if existing, err := s.store.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return ErrEmailInUse
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.store.CreateUser(ctx, username, email, hashed); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Login validates credentials, records activity, and returns a JWT
// token together with the username.
func (s *Service) Login(ctx context.Context, email, password string) (token, username string, err error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", "", ErrInvalidCredentials
	}

	// Login counts as activity for the "active today" stat. Failure
	// here shouldn't fail the login.
	_ = s.store.TouchLastActive(ctx, user.ID)

	token, err = GenerateToken(s.jwtConfig, user.ID, user.Username)
	if err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}

	return token, user.Username, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}
