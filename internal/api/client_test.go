package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/backendtest"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startBackend(t *testing.T) (*backendtest.Server, *Client) {
	t.Helper()
	backend := backendtest.New()
	baseURL := backend.Start()
	t.Cleanup(backend.Close)
	return backend, NewClient(baseURL, 5*time.Second)
}

func TestCallAttachesHeaders(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte("7"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.SetSessionToken("tok-123")

	n, err := c.GetCoachCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotContentType)
}

func TestCallOmitsBearerWhenAnonymous(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("0"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.GetCoachCount(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestCallNullBodyDecodesToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	profile, err := c.GetCallerProfile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, KindUnauthorized, kindForStatus(http.StatusUnauthorized))
	assert.Equal(t, KindUnauthorized, kindForStatus(http.StatusForbidden))
	assert.Equal(t, KindNotFound, kindForStatus(http.StatusNotFound))
	assert.Equal(t, KindUnavailable, kindForStatus(http.StatusBadGateway))
	assert.Equal(t, KindUnavailable, kindForStatus(http.StatusServiceUnavailable))
	assert.Equal(t, KindUnavailable, kindForStatus(http.StatusGatewayTimeout))
	assert.Equal(t, KindInternal, kindForStatus(http.StatusInternalServerError))
}

func TestCallClassifiesErrorEnvelope(t *testing.T) {
	_, c := startBackend(t)

	// Anonymous calls are rejected with the unauthorized kind.
	_, err := c.GetFeed(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.NotEmpty(t, apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestCallUnreachableBackendIsUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	_, err := c.GetFeed(context.Background())
	assert.True(t, IsUnavailable(err))
}

func TestOperationsRoundTrip(t *testing.T) {
	backend, c := startBackend(t)
	ctx := context.Background()

	backend.SeedProfile(models.CoachProfile{UserID: "coach-1", Name: "Dana", Specialty: "Goalkeeping"})
	c.SetSessionToken(backend.IssueToken("coach-1", models.RoleUser))

	profile, err := c.GetCallerProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Dana", profile.Name)

	count, err := c.GetCoachCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, c.CreatePost(ctx, "first session done", nil))
	feed, err := c.GetFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, models.Principal("coach-1"), feed[0].Author)

	liked, err := c.ToggleLikePost(ctx, feed[0].ID)
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = c.ToggleLikePost(ctx, feed[0].ID)
	require.NoError(t, err)
	assert.False(t, liked)

	missing, err := c.GetPost(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFetchBlobBytes(t *testing.T) {
	backend, c := startBackend(t)

	blob := backend.AddBlob([]byte("pretend-image-bytes"))
	data, err := c.FetchBlobBytes(context.Background(), blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("pretend-image-bytes"), data)

	backend.RemoveBlob(blob.ID)
	_, err = c.FetchBlobBytes(context.Background(), blob)
	assert.True(t, IsNotFound(err))
}
