// Package session tracks the operator's authentication state against the
// audit backend. The manager is a small state machine: anonymous while no
// token is held, authenticating while a login is in flight, authenticated
// once the backend has accepted credentials.
//
// Login never returns a Go error. Auth failure is an expected outcome, not
// an exceptional one, so callers get a result they can render directly.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/openaudit/auditlens/internal/backend"
)

// State is the manager's position in the auth lifecycle.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// API is the slice of the backend client the manager needs.
type API interface {
	Login(ctx context.Context, email, password string) (*backend.Token, error)
	CurrentUser(ctx context.Context) (*backend.User, error)
}

// LoginResult is the outcome of a login attempt. Exactly one of OK or
// Message is meaningful: OK carries the user, a failure carries a message
// safe to show the operator.
type LoginResult struct {
	OK      bool
	Message string
	User    *backend.User
}

// Manager owns the session state machine.
type Manager struct {
	mu     sync.RWMutex
	state  State
	user   *backend.User
	store  TokenStore
	api    API
	logger *slog.Logger
}

// New creates a session manager. The store may already hold a token from a
// previous run; call Resume to validate it.
func New(store TokenStore, api API, logger *slog.Logger) *Manager {
	return &Manager{
		state:  StateAnonymous,
		store:  store,
		api:    api,
		logger: logger,
	}
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns the authenticated user, or nil.
func (m *Manager) User() *backend.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Login attempts to authenticate. A second login while one is in flight is
// rejected rather than queued.
func (m *Manager) Login(ctx context.Context, email, password string) LoginResult {
	m.mu.Lock()
	if m.state == StateAuthenticating {
		m.mu.Unlock()
		return LoginResult{Message: "A sign-in is already in progress."}
	}
	m.state = StateAuthenticating
	m.mu.Unlock()

	tok, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.mu.Lock()
		m.state = StateAnonymous
		m.mu.Unlock()
		m.logger.Warn("login rejected", "email", email, "error", err)
		return LoginResult{Message: loginMessage(err)}
	}

	if err := m.store.Save(tok.AccessToken); err != nil {
		m.mu.Lock()
		m.state = StateAnonymous
		m.mu.Unlock()
		m.logger.Error("token save failed", "error", err)
		return LoginResult{Message: "Signed in, but the session could not be saved. Try again."}
	}

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		// Token accepted but the profile lookup failed. Keep the session;
		// the user resolves on the next request.
		m.logger.Warn("profile lookup failed after login", "error", err)
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = user
	m.mu.Unlock()

	m.logger.Info("session established", "email", email)
	return LoginResult{OK: true, User: user}
}

// Resume validates a persisted token from a previous run. Returns true if
// the backend still accepts it.
func (m *Manager) Resume(ctx context.Context) bool {
	if m.store.Token() == "" {
		return false
	}

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		m.logger.Info("persisted token rejected, clearing", "error", err)
		m.store.Clear()
		return false
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = user
	m.mu.Unlock()

	m.logger.Info("session resumed", "email", user.Email)
	return true
}

// Logout clears the session. Safe to call in any state, any number of times.
func (m *Manager) Logout() {
	m.mu.Lock()
	wasAuthed := m.state == StateAuthenticated
	m.state = StateAnonymous
	m.user = nil
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Warn("token clear failed", "error", err)
	}
	if wasAuthed {
		m.logger.Info("session ended")
	}
}

// Invalidate drops the session after the backend rejected the token.
// Wired to the client's 401 callback.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}
	m.state = StateAnonymous
	m.user = nil
	m.mu.Unlock()

	m.store.Clear()
	m.logger.Warn("session invalidated by backend")
}

// loginMessage maps a login error to operator-facing text.
func loginMessage(err error) string {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return "Incorrect email or password."
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "request failed"):
		return "The audit service is unreachable. Check connectivity and try again."
	default:
		return "Sign-in failed. Try again in a moment."
	}
}
