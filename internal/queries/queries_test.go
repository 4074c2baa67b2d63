package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/api"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/backendtest"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/cache"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/notify"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/session"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/viewed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend *backendtest.Server
	client  *api.Client
	store   *cache.Store
	sess    *session.Manager
	rec     *notify.Recorder
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := backendtest.New()
	baseURL := backend.Start()
	t.Cleanup(backend.Close)

	client := api.NewClient(baseURL, 5*time.Second)
	store := cache.NewStore(0)
	sess := session.NewManager()
	rec := notify.NewRecorder()

	viewedSet, err := viewed.Open(t.TempDir())
	require.NoError(t, err)

	return &fixture{
		backend: backend,
		client:  client,
		store:   store,
		sess:    sess,
		rec:     rec,
		service: NewService(client, store, sess, rec, viewedSet),
	}
}

func (f *fixture) login(t *testing.T, user models.Principal, role models.UserRole) {
	t.Helper()
	token := f.backend.IssueToken(user, role)
	require.NoError(t, f.sess.Restore(token))
	f.client.SetSessionToken(token)
}

func (f *fixture) anonymous(t *testing.T) {
	t.Helper()
	require.NoError(t, f.sess.Restore(""))
}

func TestQueryInertBeforeSessionRestore(t *testing.T) {
	f := newFixture(t)

	// Session still initializing: bindings return the soft default without
	// touching the facade.
	posts, err := f.service.Feed().Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, posts)
	assert.Equal(t, 0, f.backend.Calls("getFeed"))
}

func TestInertParameterBindings(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", models.RoleUser)

	msgs, err := f.service.DirectMessages("").Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, msgs)

	profile, err := f.service.Profile("").Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, profile)

	assert.Equal(t, 0, f.backend.Calls("getDirectMessages"))
	assert.Equal(t, 0, f.backend.Calls("getProfile"))
}

func TestUnauthorizedResolvesToSoftDefault(t *testing.T) {
	f := newFixture(t)
	f.anonymous(t)

	posts, err := f.service.Feed().Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, posts)

	// No retry for authorization rejections, and the default is cached as a
	// regular result.
	assert.Equal(t, 1, f.backend.Calls("getFeed"))
	_, err = f.service.Feed().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.backend.Calls("getFeed"))

	// Soft resolution is not a failure: nothing is surfaced.
	assert.Empty(t, f.rec.Errors())
}

func TestQueryRetriesOnceOnFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedProfile(models.CoachProfile{UserID: "alice", Name: "Alice"})
	f.login(t, "alice", models.RoleUser)

	f.backend.FailNext("getCoachCount", 1)
	count, err := f.service.CoachCount().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 2, f.backend.Calls("getCoachCount"))
}

func TestQuerySurfacesErrorAfterRetry(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", models.RoleUser)

	f.backend.FailNext("getCoachCount", 2)
	_, err := f.service.CoachCount().Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, f.backend.Calls("getCoachCount"))
}

func TestQueryServesFreshCache(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", models.RoleUser)
	f.backend.SeedPost("alice", "hello", time.Now())

	_, err := f.service.Feed().Get(context.Background())
	require.NoError(t, err)
	_, err = f.service.Feed().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.backend.Calls("getFeed"))
}

func TestMutationInvalidationTriggersBoundRefetch(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", models.RoleUser)

	feed := f.service.Feed()
	ctx := context.Background()

	_, err := feed.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, f.backend.Calls("getFeed"))

	release := feed.Bind(ctx)
	defer release()

	_, err = f.service.CreatePost().Run(ctx, CreatePostParams{Content: "training schedule up"})
	require.NoError(t, err)

	// The invalidation is synchronous; the bound refetch runs in the
	// background.
	assert.True(t, f.store.IsStale(feed.Key()))
	require.Eventually(t, func() bool {
		return f.backend.Calls("getFeed") == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Contains(t, f.rec.Successes(), "Post created successfully")
}

func TestReleasedBindingStopsRefetching(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", models.RoleUser)

	feed := f.service.Feed()
	ctx := context.Background()
	_, err := feed.Get(ctx)
	require.NoError(t, err)

	release := feed.Bind(ctx)
	release()
	release() // idempotent

	_, err = f.service.CreatePost().Run(ctx, CreatePostParams{Content: "post"})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, f.backend.Calls("getFeed"))
}

func TestFailedMutationLeavesCacheIntact(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", models.RoleUser)
	f.backend.SeedPost("alice", "existing", time.Now())

	ctx := context.Background()
	_, err := f.service.Feed().Get(ctx)
	require.NoError(t, err)

	f.backend.FailNext("createPost", 1)
	_, err = f.service.CreatePost().Run(ctx, CreatePostParams{Content: "doomed"})
	require.Error(t, err)

	// Writes are never retried.
	assert.Equal(t, 1, f.backend.Calls("createPost"))
	// The cached feed is still fresh.
	_, ok := f.store.GetFresh(keyFeed)
	assert.True(t, ok)
	require.NotEmpty(t, f.rec.Errors())
	assert.Contains(t, f.rec.Errors()[0], "Failed to create post")
}

func TestToggleLikeRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", models.RoleUser)
	postID := f.backend.SeedPost("bob", "drills", time.Now())

	ctx := context.Background()
	liked, err := f.service.ToggleLikePost().Run(ctx, postID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = f.service.ToggleLikePost().Run(ctx, postID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestApplyForJobDuplicateGuard(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedProfile(models.CoachProfile{UserID: "alice", Name: "Alice"})
	f.login(t, "alice", models.RoleUser)
	jobID := f.backend.SeedJob("bob", "Youth goalkeeper coach")

	ctx := context.Background()
	_, err := f.service.ApplyForJob().Run(ctx, ApplyParams{JobID: jobID, CoverLetter: "hi"})
	require.NoError(t, err)

	// The invalidation refreshes the caller's application list on next read.
	apps, err := f.service.MyApplications().Get(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)

	_, err = f.service.ApplyForJob().Run(ctx, ApplyParams{JobID: jobID, CoverLetter: "again"})
	require.ErrorIs(t, err, ErrAlreadyApplied)

	// The guard fires before the facade is reached.
	assert.Equal(t, 1, f.backend.Calls("applyForJob"))
	require.NotEmpty(t, f.rec.Errors())
}

func TestInitializeProfileSeedsCallerProfile(t *testing.T) {
	f := newFixture(t)
	f.login(t, "newcoach", models.RoleUser)

	profile, err := f.service.InitializeProfile().Run(context.Background(), None{})
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, models.Principal("newcoach"), profile.UserID)
	assert.True(t, session.NeedsProfileSetup(profile))

	cached, ok := f.store.Get(keyCallerProfile)
	require.True(t, ok)
	assert.Equal(t, profile, cached)
}

func TestDirectMessageInvalidatesConversationOnly(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", models.RoleUser)

	ctx := context.Background()
	_, err := f.service.DirectMessages("bob").Get(ctx)
	require.NoError(t, err)
	_, err = f.service.DirectMessages("carol").Get(ctx)
	require.NoError(t, err)

	_, err = f.service.SendDirectMessage().Run(ctx, DirectMessageParams{Receiver: "bob", Content: "hey"})
	require.NoError(t, err)

	assert.True(t, f.store.IsStale(directMessagesKey("bob")))
	// freshLive entries are always refetched on read, but the carol entry was
	// not explicitly invalidated.
	msgs, err := f.service.DirectMessages("bob").Get(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hey", msgs[0].Content)
}

func TestAdminOnlyMutationRejectedForUser(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", models.RoleUser)

	_, err := f.service.DeleteUser().Run(context.Background(), "bob")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	require.NotEmpty(t, f.rec.Errors())
	assert.Contains(t, f.rec.Errors()[0], "Failed to delete user")
}

func TestBootstrapResolvesProfile(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedProfile(models.CoachProfile{UserID: "alice", Name: "Alice"})
	f.login(t, "alice", models.RoleUser)

	res := f.service.Bootstrap(context.Background())
	assert.False(t, res.TimedOut)
	assert.False(t, res.NeedsSetup)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "Alice", res.Profile.Name)
}

func TestBootstrapTimesOutOnSlowBackend(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedProfile(models.CoachProfile{UserID: "alice", Name: "Alice"})
	f.login(t, "alice", models.RoleUser)
	f.sess.ProfileReadyTimeout = 30 * time.Millisecond
	f.backend.SetLatency("getCallerUserProfile", 300*time.Millisecond)

	res := f.service.Bootstrap(context.Background())
	assert.True(t, res.TimedOut)
	assert.Nil(t, res.Profile)

	// The in-flight fetch still lands in the cache once it completes.
	require.Eventually(t, func() bool {
		_, ok := f.store.Get(keyCallerProfile)
		return ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSortPosts(t *testing.T) {
	f := newFixture(t)

	base := time.Now()
	posts := []models.Post{
		{ID: "a", Timestamp: base.Add(-2 * time.Hour), Likes: []models.Principal{"x", "y"}},
		{ID: "b", Timestamp: base, Comments: []models.Comment{{ID: "c1"}}},
		{ID: "c", Timestamp: base.Add(-time.Hour), Likes: []models.Principal{"x", "y", "z"}},
	}

	newest := f.service.SortPosts(posts, SortNewest)
	assert.Equal(t, []string{"b", "c", "a"}, postIDs(newest))

	liked := f.service.SortPosts(posts, SortMostLiked)
	assert.Equal(t, "c", liked[0].ID)

	commented := f.service.SortPosts(posts, SortMostCommented)
	assert.Equal(t, "b", commented[0].ID)

	require.NoError(t, f.service.viewed.Add("a", "c"))
	unviewed := f.service.SortPosts(posts, SortNotViewed)
	assert.Equal(t, []string{"b"}, postIDs(unviewed))

	// Input order is untouched.
	assert.Equal(t, []string{"a", "b", "c"}, postIDs(posts))
}

func postIDs(posts []models.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestMarkPostViewedPersistsLocally(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", models.RoleUser)
	postID := f.backend.SeedPost("bob", "session recap", time.Now())

	_, err := f.service.MarkPostViewed().Run(context.Background(), postID)
	require.NoError(t, err)
	assert.True(t, f.service.viewed.Contains(postID))
	assert.Equal(t, 1, f.backend.Calls("markPostViewed"))
}

func TestGuardFailureSkipsPendingState(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice", models.RoleUser)

	m := f.service.ApplyForJob()
	f.store.Put(keyMyApplications, []models.JobApplication{{JobID: "j1"}}, time.Minute)

	_, err := m.Run(context.Background(), ApplyParams{JobID: "j1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyApplied))
	assert.False(t, m.Pending())
	assert.Equal(t, 0, f.backend.Calls("applyForJob"))
}
