package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestRestore(t *testing.T) {
	m := NewManager()
	assert.False(t, m.Ready())

	token := signedToken(t, jwt.MapClaims{"sub": "alice", "role": "admin"})
	require.NoError(t, m.Restore(token))

	assert.True(t, m.Ready())
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, models.Principal("alice"), m.Identity())
	assert.Equal(t, models.RoleAdmin, m.Role())
	assert.Equal(t, token, m.Token())
}

func TestRestoreDefaultsRoleToUser(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Restore(signedToken(t, jwt.MapClaims{"sub": "bob"})))
	assert.Equal(t, models.RoleUser, m.Role())
}

func TestRestoreEmptyTokenIsAnonymous(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Restore(""))

	assert.True(t, m.Ready())
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, models.RoleGuest, m.Role())
}

func TestRestoreRejectsGarbage(t *testing.T) {
	m := NewManager()
	assert.Error(t, m.Restore("not-a-token"))
	assert.True(t, m.Ready())
	assert.False(t, m.IsAuthenticated())
}

func TestRestoreRejectsMissingSubject(t *testing.T) {
	m := NewManager()
	assert.Error(t, m.Restore(signedToken(t, jwt.MapClaims{"role": "user"})))
	assert.False(t, m.IsAuthenticated())
}

func TestClear(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Restore(signedToken(t, jwt.MapClaims{"sub": "alice"})))

	m.Clear()
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, models.RoleGuest, m.Role())
	assert.Empty(t, m.Token())
	assert.True(t, m.Ready())
}

func TestAwaitProfileReady(t *testing.T) {
	m := NewManager()
	want := &models.CoachProfile{UserID: "alice", Name: "Alice"}

	profile, timedOut := m.AwaitProfileReady(context.Background(), func(context.Context) (*models.CoachProfile, error) {
		return want, nil
	})
	assert.False(t, timedOut)
	assert.Equal(t, want, profile)
}

func TestAwaitProfileReadyTimesOut(t *testing.T) {
	m := NewManager()
	m.ProfileReadyTimeout = 20 * time.Millisecond

	profile, timedOut := m.AwaitProfileReady(context.Background(), func(context.Context) (*models.CoachProfile, error) {
		time.Sleep(200 * time.Millisecond)
		return &models.CoachProfile{UserID: "alice"}, nil
	})
	assert.True(t, timedOut)
	assert.Nil(t, profile)
}

func TestAwaitProfileReadySwallowsFetchError(t *testing.T) {
	m := NewManager()

	profile, timedOut := m.AwaitProfileReady(context.Background(), func(context.Context) (*models.CoachProfile, error) {
		return nil, errors.New("backend down")
	})
	assert.False(t, timedOut)
	assert.Nil(t, profile)
}

func TestNeedsProfileSetup(t *testing.T) {
	assert.False(t, NeedsProfileSetup(nil))
	assert.True(t, NeedsProfileSetup(&models.CoachProfile{UserID: "alice"}))
	assert.False(t, NeedsProfileSetup(&models.CoachProfile{UserID: "alice", Name: "Alice"}))
}
