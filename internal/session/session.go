// Package session tracks the caller identity for the lifetime of the app
// session: restored from a stored token at startup, cleared at logout.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// DefaultProfileReadyTimeout bounds how long the bootstrap waits for the
// caller profile before degrading to a ready state.
const DefaultProfileReadyTimeout = 10 * time.Second

// Manager holds the current identity. It is the only mutable session state
// besides the cache store.
type Manager struct {
	mu           sync.RWMutex
	identity     models.Principal
	role         models.UserRole
	token        string
	initializing bool

	// ProfileReadyTimeout is fixed at construction; tests shorten it.
	ProfileReadyTimeout time.Duration
}

// NewManager creates a manager in the initializing state. Restore or Clear
// finishes initialization.
func NewManager() *Manager {
	return &Manager{
		initializing:        true,
		role:                models.RoleGuest,
		ProfileReadyTimeout: DefaultProfileReadyTimeout,
	}
}

// Restore installs a stored session token. The token's claims are read
// without signature verification: the backend is the authority on token
// validity and rejects forged tokens on every call. An empty token restores
// an anonymous session.
func (m *Manager) Restore(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initializing = false

	if token == "" {
		m.identity = ""
		m.role = models.RoleGuest
		m.token = ""
		return nil
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		m.identity = ""
		m.role = models.RoleGuest
		m.token = ""
		return fmt.Errorf("failed to parse session token: %w", err)
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		m.identity = ""
		m.role = models.RoleGuest
		m.token = ""
		return fmt.Errorf("session token has no subject claim")
	}

	m.identity = models.Principal(sub)
	m.token = token
	m.role = models.RoleUser
	if role, ok := claims["role"].(string); ok && role != "" {
		m.role = models.UserRole(role)
	}
	return nil
}

// Clear drops the identity, returning the session to anonymous.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.identity = ""
	m.role = models.RoleGuest
	m.token = ""
	m.initializing = false
	m.mu.Unlock()
}

// Identity returns the current principal; empty when anonymous.
func (m *Manager) Identity() models.Principal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

// Role returns the role claim carried by the session token.
func (m *Manager) Role() models.UserRole {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.role
}

// Token returns the raw session token.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// IsAuthenticated reports whether a non-anonymous identity is installed.
func (m *Manager) IsAuthenticated() bool {
	return !m.Identity().IsAnonymous()
}

// Ready reports whether session restoration has finished. Query bindings stay
// inert until it does.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.initializing
}

// AwaitProfileReady runs fetch and waits for it up to the profile-ready
// timeout. On timeout it returns (nil, true) so the caller can show the main
// view instead of an indefinite loading screen; the fetch keeps running and
// lands in the cache whenever it completes.
func (m *Manager) AwaitProfileReady(ctx context.Context, fetch func(context.Context) (*models.CoachProfile, error)) (*models.CoachProfile, bool) {
	type outcome struct {
		profile *models.CoachProfile
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		profile, err := fetch(ctx)
		done <- outcome{profile, err}
	}()

	timer := time.NewTimer(m.ProfileReadyTimeout)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			log.Warn().Err(out.err).Msg("Profile fetch failed during bootstrap")
			return nil, false
		}
		return out.profile, false
	case <-timer.C:
		log.Warn().
			Dur("timeout", m.ProfileReadyTimeout).
			Msg("Profile readiness timed out, proceeding without profile")
		return nil, true
	case <-ctx.Done():
		return nil, false
	}
}

// NeedsProfileSetup reports whether the fetched profile still requires the
// first-time setup flow. A profile with no name has only been initialized.
func NeedsProfileSetup(profile *models.CoachProfile) bool {
	return profile != nil && profile.Name == ""
}
