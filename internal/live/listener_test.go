package live

import (
	"context"
	"testing"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/api"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/backendtest"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/cache"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListenerBuildsWebsocketURL(t *testing.T) {
	l, err := NewListener("http://backend.example:8080/base/", "tok", cache.NewStore(0))
	require.NoError(t, err)
	assert.Equal(t, "ws://backend.example:8080/base/ws?token=tok", l.wsURL)

	l, err = NewListener("https://backend.example", "", cache.NewStore(0))
	require.NoError(t, err)
	assert.Equal(t, "wss://backend.example/ws", l.wsURL)
}

func TestNewListenerRejectsBadURL(t *testing.T) {
	_, err := NewListener("://nope", "tok", cache.NewStore(0))
	assert.Error(t, err)
}

func TestListenerAppliesPushedInvalidations(t *testing.T) {
	backend := backendtest.New()
	baseURL := backend.Start()
	t.Cleanup(backend.Close)

	store := cache.NewStore(0)
	store.Put("hasNewBannerNotification", false, time.Minute)

	adminToken := backend.IssueToken("admin-1", models.RoleAdmin)
	listener, err := NewListener(baseURL, adminToken, store)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go listener.Run(ctx)

	var notified bool
	store.Subscribe("hasNewBannerNotification", func(string) { notified = true })

	// Give the websocket a moment to register before triggering the push.
	require.Eventually(t, func() bool {
		client := api.NewClient(baseURL, time.Second)
		client.SetSessionToken(backend.IssueToken("reporter", models.RoleUser))
		require.NoError(t, client.SubmitReport(ctx))
		return store.IsStale("hasNewBannerNotification")
	}, 3*time.Second, 100*time.Millisecond)

	assert.True(t, notified)
}
