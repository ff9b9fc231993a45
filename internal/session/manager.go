// Package session is the single source of truth for who the current actor is
// and whether they hold the elevated admin capability.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/rabiauynk/Organik-kose/internal/api"
	"github.com/rabiauynk/Organik-kose/internal/localstore"
	"github.com/rabiauynk/Organik-kose/internal/platform/observability"
)

// adminRole is the backend role value that grants the admin capability.
const adminRole = "ADMIN"

// Session is the locally held representation of the authenticated actor.
type Session struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin"`
}

// Authenticator is the remote auth contract consumed by the manager.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.AuthResult, error)
	Register(ctx context.Context, reg api.RegisterRequest) (api.AuthResult, error)
}

// Persistence is the subset of the local store the manager needs.
type Persistence interface {
	PutJSON(key string, value any) error
	GetJSON(key string, out any) error
	Delete(key string) error
}

// Deps wires the manager's collaborators.
type Deps struct {
	Auth   Authenticator
	Store  Persistence
	Logger *zap.Logger
}

// Manager owns the session state. Views read the published session and invoke
// the lifecycle operations; they never mutate it directly.
type Manager struct {
	auth   Authenticator
	store  Persistence
	logger *zap.Logger

	mu      sync.Mutex
	current *Session
	token   string
}

var (
	errAuthRequired  = errors.New("session: authenticator is required")
	errStoreRequired = errors.New("session: store is required")
)

// NewManager constructs a Manager enforcing dependency validation.
func NewManager(deps Deps) (*Manager, error) {
	if deps.Auth == nil {
		return nil, errAuthRequired
	}
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	return &Manager{
		auth:   deps.Auth,
		store:  deps.Store,
		logger: observability.Ensure(deps.Logger),
	}, nil
}

// Initialize rehydrates a previously persisted session at process start. The
// persisted token is trusted without remote validation; a revoked token only
// surfaces on the next authenticated call's failure.
func (m *Manager) Initialize() {
	var persisted Session
	if err := m.store.GetJSON(localstore.KeySession, &persisted); err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			m.logger.Warn("persisted session unreadable, starting signed out", zap.Error(err))
		}
		return
	}

	var token string
	if err := m.store.GetJSON(localstore.KeyToken, &token); err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			m.logger.Warn("persisted token unreadable, starting signed out", zap.Error(err))
		}
		// A session without its token cannot make authenticated calls.
		return
	}

	m.mu.Lock()
	m.current = &persisted
	m.token = token
	m.mu.Unlock()

	m.logger.Info("session rehydrated from local store",
		zap.String("userId", persisted.UserID), zap.Bool("isAdmin", persisted.IsAdmin))
}

// Login authenticates against the backend. On success the derived session and
// token are persisted and published. Failures leave all state untouched and
// are reported as false; no error escapes this boundary.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	result, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.logger.Warn("login failed", zap.String("email", redactEmail(email)), zap.Error(err))
		return false
	}
	return m.establish(result)
}

// Register creates an account and treats success as an implicit login.
func (m *Manager) Register(ctx context.Context, email, password, displayName string) bool {
	result, err := m.auth.Register(ctx, api.RegisterRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		m.logger.Warn("registration failed", zap.String("email", redactEmail(email)), zap.Error(err))
		return false
	}
	return m.establish(result)
}

// Logout clears the in-memory session and removes the persisted session and
// token. Calling it with no active session is a no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	active := m.current != nil
	m.current = nil
	m.token = ""
	m.mu.Unlock()

	if err := m.store.Delete(localstore.KeySession); err != nil {
		m.logger.Error("remove persisted session failed", zap.Error(err))
	}
	if err := m.store.Delete(localstore.KeyToken); err != nil {
		m.logger.Error("remove persisted token failed", zap.Error(err))
	}
	if active {
		m.logger.Info("session cleared")
	}
}

// Current returns a copy of the published session, or nil when signed out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	copied := *m.current
	return &copied
}

// IsAdmin reports whether the current actor holds the admin capability.
func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil && m.current.IsAdmin
}

// Token exposes the opaque bearer token for authenticated backend calls.
// Empty while signed out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) establish(result api.AuthResult) bool {
	sess := Session{
		UserID:      result.UserID,
		Email:       result.Email,
		DisplayName: result.DisplayName,
		IsAdmin:     result.Role == adminRole,
	}

	// Persist before publishing so a crash between the two never leaves a
	// published session that would not survive a reload.
	if err := m.store.PutJSON(localstore.KeySession, sess); err != nil {
		m.logger.Error("persist session failed", zap.Error(err))
		return false
	}
	if err := m.store.PutJSON(localstore.KeyToken, result.Token); err != nil {
		m.logger.Error("persist token failed", zap.Error(err))
		_ = m.store.Delete(localstore.KeySession)
		return false
	}

	m.mu.Lock()
	m.current = &sess
	m.token = result.Token
	m.mu.Unlock()

	m.logger.Info("session established",
		zap.String("userId", sess.UserID), zap.Bool("isAdmin", sess.IsAdmin))
	return true
}

func redactEmail(email string) string {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "invalid"
	}
	return fmt.Sprintf("%c***@%s", local[0], domain)
}
