// Package auth implements account registration and password login for the auth service.
// Successful calls return a signed session token issued by the session package.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sportiify/internal/kafka"
	"sportiify/internal/session"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserNotFound is returned when no account matches the email
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists is returned when email is already registered
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordTooLong is returned for a password bcrypt cannot hash
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// MaxPasswordBytes is the bcrypt input limit. Multi-byte characters count once per byte.
const MaxPasswordBytes = 72

// EventPublisher publishes auth events; *kafka.Producer satisfies it
type EventPublisher interface {
	PublishUserEvent(event kafka.UserEvent) error
}

// Service defines the authentication service interface
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
}

// service implements the Service interface
type service struct {
	users      UserStore
	tokens     session.Manager
	events     EventPublisher
	logger     *slog.Logger
	bcryptCost int
}

// Option customizes the service
type Option func(*service)

// WithEvents publishes user events through p
func WithEvents(p EventPublisher) Option {
	return func(s *service) { s.events = p }
}

// WithBcryptCost overrides the hashing cost
func WithBcryptCost(cost int) Option {
	return func(s *service) { s.bcryptCost = cost }
}

// NewService creates a new authentication service
func NewService(users UserStore, tokens session.Manager, logger *slog.Logger, opts ...Option) Service {
	s := &service{
		users:      users,
		tokens:     tokens,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account and signs a token for it
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if len(req.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        NormalizeEmail(req.Email),
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.publish(kafka.EventUserRegistered, user)
	return resp, nil
}

// Login checks the password and signs a token for the account
func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(req.Email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.publish(kafka.EventUserLoggedIn, user)
	return resp, nil
}

func (s *service) issue(user *User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(session.Identity{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// publish is best effort; a broker outage never fails the request
func (s *service) publish(eventType string, user *User) {
	if s.events == nil {
		return
	}
	ev := kafka.NewUserEvent(eventType, user.ID, user.Email, user.Name)
	if err := s.events.PublishUserEvent(ev); err != nil {
		s.logger.Warn("Failed to publish user event",
			"type", eventType,
			"user_id", user.ID,
			"error", err)
	}
}
