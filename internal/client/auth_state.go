package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
)

var (
	// ErrAuthPending is reported by Guard while the session is being checked
	ErrAuthPending = errors.New("authentication check in progress")
	// ErrLoginRequired is reported by Guard for an anonymous session
	ErrLoginRequired = errors.New("login required")
	// ErrNoToken is returned when a successful auth response carries no token
	ErrNoToken = errors.New("auth response carried no token")
)

// State is the session state of the client
type State int

const (
	StateUninitialized State = iota
	StateChecking
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// AuthAPI is the subset of the API used by AuthState
type AuthAPI interface {
	Register(ctx context.Context, name, email, password string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	CheckToken(ctx context.Context, token string) (*TokenStatus, error)
}

// AuthState owns the session of one user: the persisted token and whether it is known valid
type AuthState struct {
	mu     sync.RWMutex
	state  State
	user   *SessionUser
	epoch  uint64 // bumped by Login, Register and Logout
	api    AuthAPI
	tokens TokenStore
	logger *slog.Logger
}

// NewAuthState creates an uninitialized session
func NewAuthState(api AuthAPI, tokens TokenStore, logger *slog.Logger) *AuthState {
	return &AuthState{
		state:  StateUninitialized,
		api:    api,
		tokens: tokens,
		logger: logger,
	}
}

// State returns the current session state
func (a *AuthState) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// IsAuthenticated reports whether the session holds a token known to be valid
func (a *AuthState) IsAuthenticated() bool {
	return a.State() == StateAuthenticated
}

// Loading reports whether the initial check has not finished
func (a *AuthState) Loading() bool {
	s := a.State()
	return s == StateUninitialized || s == StateChecking
}

// User returns the identity confirmed by the last check, if any
func (a *AuthState) User() *SessionUser {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

// Token returns the persisted token
func (a *AuthState) Token() string {
	token, err := a.tokens.Load()
	if err != nil {
		a.logger.Warn("Failed to load token", "error", err)
		return ""
	}
	return token
}

// Init resolves the session from the persisted token and returns the resulting state.
// Without a token no request is made. Any check failure leaves the session anonymous;
// a 401 also discards the token. A Login, Register or Logout that completes while the
// check is in flight wins over its result.
func (a *AuthState) Init(ctx context.Context) State {
	a.mu.Lock()
	a.state, a.user = StateChecking, nil
	epoch := a.epoch
	a.mu.Unlock()

	token, err := a.tokens.Load()
	if err != nil {
		a.logger.Warn("Failed to load token", "error", err)
		return a.resolve(epoch, "", StateAnonymous, nil)
	}
	if token == "" {
		return a.resolve(epoch, "", StateAnonymous, nil)
	}

	status, err := a.api.CheckToken(ctx, token)
	if err != nil {
		a.logger.Debug("Error checking auth status", "error", err)
		rejected := ""
		if StatusOf(err) == http.StatusUnauthorized {
			rejected = token
		}
		return a.resolve(epoch, rejected, StateAnonymous, nil)
	}

	if !status.IsAuthenticated {
		return a.resolve(epoch, "", StateAnonymous, nil)
	}
	return a.resolve(epoch, "", StateAuthenticated, status.User)
}

// resolve applies the outcome of the check started at epoch. A stale outcome is
// dropped and the current state returned. rejected, when set, is cleared from the
// store only if it is still the persisted token.
func (a *AuthState) resolve(epoch uint64, rejected string, s State, user *SessionUser) State {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.epoch != epoch {
		return a.state
	}
	if rejected != "" {
		if current, err := a.tokens.Load(); err == nil && current == rejected {
			if err := a.tokens.Clear(); err != nil {
				a.logger.Warn("Failed to clear rejected token", "error", err)
			}
		}
	}
	a.state, a.user = s, user
	return s
}

// Login signs in and persists the token. On error the state is unchanged.
func (a *AuthState) Login(ctx context.Context, email, password string) error {
	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return a.accept(resp)
}

// Register creates an account and signs in. On error the state is unchanged.
func (a *AuthState) Register(ctx context.Context, name, email, password string) error {
	resp, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	return a.accept(resp)
}

func (a *AuthState) accept(resp *AuthResponse) error {
	if resp == nil || resp.Token == "" {
		return ErrNoToken
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.tokens.Save(resp.Token); err != nil {
		return err
	}

	var user *SessionUser
	if resp.User != nil {
		user = &SessionUser{ID: resp.User.ID, Email: resp.User.Email, Name: resp.User.Name}
	}
	a.epoch++
	a.state, a.user = StateAuthenticated, user
	return nil
}

// Logout discards the token and makes the session anonymous
func (a *AuthState) Logout() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.tokens.Clear()
	a.epoch++
	a.state, a.user = StateAnonymous, nil
	return err
}

// Guard runs fn with the session token when authenticated
func (a *AuthState) Guard(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	switch a.State() {
	case StateUninitialized, StateChecking:
		return ErrAuthPending
	case StateAuthenticated:
		return fn(ctx, a.Token())
	default:
		return ErrLoginRequired
	}
}
