package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"sportiify/internal/kafka"
	"sportiify/internal/session"

	"golang.org/x/crypto/bcrypt"
)

// fakeStore is an in-memory UserStore
type fakeStore struct {
	mu      sync.Mutex
	byEmail map[string]*User
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmail: make(map[string]*User)}
}

func (f *fakeStore) Create(ctx context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return ErrEmailExists
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// fakePublisher records published events
type fakePublisher struct {
	events []kafka.UserEvent
	err    error
}

func (f *fakePublisher) PublishUserEvent(ev kafka.UserEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, store UserStore, pub EventPublisher) (Service, session.Manager) {
	t.Helper()
	tokens, err := session.NewManager("auth-test-secret-0123", time.Hour)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	opts := []Option{WithBcryptCost(bcrypt.MinCost)}
	if pub != nil {
		opts = append(opts, WithEvents(pub))
	}
	return NewService(store, tokens, discardLogger(), opts...), tokens
}

func TestRegister_IssuesVerifiableToken(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc, tokens := newTestService(t, store, pub)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "  Ada  ",
		Email:    " Ada@Example.COM ",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if resp.User.Email != "ada@example.com" {
		t.Errorf("Expected normalized email, got %q", resp.User.Email)
	}
	if resp.User.Name != "Ada" {
		t.Errorf("Expected trimmed name, got %q", resp.User.Name)
	}

	claims, err := tokens.Verify(resp.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Email != "ada@example.com" {
		t.Errorf("Token claims do not match user: %+v", claims)
	}

	stored, _ := store.GetByEmail(context.Background(), "ada@example.com")
	if stored.PasswordHash == "secret1" || stored.PasswordHash == "" {
		t.Error("Expected password to be stored hashed")
	}

	if len(pub.events) != 1 || pub.events[0].Type != kafka.EventUserRegistered {
		t.Errorf("Expected one user.registered event, got %+v", pub.events)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, newFakeStore(), nil)
	ctx := context.Background()

	req := RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	req.Email = "ADA@example.com"
	if _, err := svc.Register(ctx, req); !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc, _ := newTestService(t, store, pub)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", "ada@example.com", "secret1", nil},
		{"email case insensitive", "ADA@example.com", "secret1", nil},
		{"wrong password", "ada@example.com", "nope", ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "secret1", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(ctx, LoginRequest{Email: tt.email, Password: tt.password})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && resp.Token == "" {
				t.Error("Expected token on successful login")
			}
		})
	}

	var logins int
	for _, ev := range pub.events {
		if ev.Type == kafka.EventUserLoggedIn {
			logins++
		}
	}
	if logins != 2 {
		t.Errorf("Expected 2 user.logged_in events, got %d", logins)
	}
}

func TestRegister_PasswordByteLimit(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: strings.Repeat("é", 37)})
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("Expected ErrPasswordTooLong for 74 bytes, got %v", err)
	}

	if _, err := svc.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: strings.Repeat("é", 36)}); err != nil {
		t.Errorf("Expected 72 bytes to be accepted, got %v", err)
	}
}

func TestLogin_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	svc, _ := newTestService(t, store, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret1"})
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected store error to propagate, got %v", err)
	}
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	svc, _ := newTestService(t, newFakeStore(), pub)

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret1",
	}); err != nil {
		t.Errorf("Expected register to succeed despite publish failure, got %v", err)
	}
}
