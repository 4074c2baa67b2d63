package queries

import (
	"context"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/api"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/cache"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/notify"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/session"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/viewed"
)

// Service builds query and mutation bindings over the facade, cache, and
// session. One instance spans the whole app session.
type Service struct {
	api      *api.Client
	store    *cache.Store
	sess     *session.Manager
	notifier notify.Notifier
	viewed   *viewed.Set
}

// NewService creates the binding service. The viewed set may be nil when
// local viewed-post tracking is unavailable.
func NewService(apiClient *api.Client, store *cache.Store, sess *session.Manager, notifier notify.Notifier, viewedSet *viewed.Set) *Service {
	return &Service{
		api:      apiClient,
		store:    store,
		sess:     sess,
		notifier: notifier,
		viewed:   viewedSet,
	}
}

// Store exposes the underlying cache store, for wiring the live listener.
func (s *Service) Store() *cache.Store { return s.store }

func newQuery[T any](s *Service, name, key string, freshFor time.Duration, soft func() T, fetch func(context.Context) (T, error)) *Query[T] {
	return &Query[T]{
		name:        name,
		key:         key,
		freshFor:    freshFor,
		store:       s.store,
		enabled:     s.sess.Ready,
		fetch:       fetch,
		softDefault: soft,
	}
}

func newInertQuery[T any](name string, soft func() T) *Query[T] {
	return &Query[T]{
		name:        name,
		inert:       true,
		softDefault: soft,
	}
}

// Profile queries.

// CallerProfile binds the caller's own profile. Resolves to nil for
// anonymous callers instead of erroring.
func (s *Service) CallerProfile() *Query[*models.CoachProfile] {
	return newQuery(s, "callerProfile", keyCallerProfile, freshProfile,
		func() *models.CoachProfile { return nil },
		s.api.GetCallerProfile)
}

// Profile binds another user's profile. An empty principal yields an inert
// binding.
func (s *Service) Profile(user models.Principal) *Query[*models.CoachProfile] {
	soft := func() *models.CoachProfile { return nil }
	if user.IsAnonymous() {
		return newInertQuery("profile", soft)
	}
	return newQuery(s, "profile", profileKey(user), freshLive, soft,
		func(ctx context.Context) (*models.CoachProfile, error) {
			return s.api.GetProfile(ctx, user)
		})
}

// AllProfiles binds the coach directory listing.
func (s *Service) AllProfiles() *Query[[]models.CoachProfile] {
	return newQuery(s, "allProfiles", keyAllProfiles, freshDirectory,
		func() []models.CoachProfile { return nil },
		s.api.GetAllProfiles)
}

// CoachCount binds the directory size.
func (s *Service) CoachCount() *Query[int] {
	return newQuery(s, "coachCount", keyCoachCount, freshDirectory,
		func() int { return 0 },
		s.api.GetCoachCount)
}

// CoachPhoto binds a coach's profile photo reference.
func (s *Service) CoachPhoto(coach models.Principal) *Query[*models.Blob] {
	soft := func() *models.Blob { return nil }
	if coach.IsAnonymous() {
		return newInertQuery("coachPhoto", soft)
	}
	return newQuery(s, "coachPhoto", coachPhotoKey(coach), freshLive, soft,
		func(ctx context.Context) (*models.Blob, error) {
			return s.api.GetCoachPhoto(ctx, coach)
		})
}

// CoachProfileDetail binds the aggregated coach detail view.
func (s *Service) CoachProfileDetail(coach models.Principal) *Query[*models.CoachProfileDetail] {
	soft := func() *models.CoachProfileDetail { return nil }
	if coach.IsAnonymous() {
		return newInertQuery("coachProfileDetail", soft)
	}
	return newQuery(s, "coachProfileDetail", profileDetailKey(coach), freshFeed, soft,
		func(ctx context.Context) (*models.CoachProfileDetail, error) {
			return s.api.GetCoachProfileDetail(ctx, coach)
		})
}

// Admin queries.

// IsAdmin binds the caller's admin flag.
func (s *Service) IsAdmin() *Query[bool] {
	return newQuery(s, "isCallerAdmin", keyIsAdmin, freshProfile,
		func() bool { return false },
		s.api.IsCallerAdmin)
}

// HasNewBanner binds the admin banner flag. Meant to be polled at
// BannerPollInterval while a banner view is active.
func (s *Service) HasNewBanner() *Query[bool] {
	return newQuery(s, "hasNewBannerNotification", keyBanner, freshLive,
		func() bool { return false },
		s.api.HasNewBannerNotification)
}

// Feed queries.

// Feed binds the flat social feed.
func (s *Service) Feed() *Query[[]models.Post] {
	return newQuery(s, "socialFeed", keyFeed, freshFeed,
		func() []models.Post { return nil },
		s.api.GetFeed)
}

// FeedCategories binds the for-you/following feed split.
func (s *Service) FeedCategories() *Query[*models.FeedCategories] {
	return newQuery(s, "feedCategories", keyFeedCategories, freshFeed,
		func() *models.FeedCategories { return &models.FeedCategories{} },
		s.api.GetFeedCategories)
}

// Post binds a single post.
func (s *Service) Post(postID string) *Query[*models.Post] {
	soft := func() *models.Post { return nil }
	if postID == "" {
		return newInertQuery("post", soft)
	}
	return newQuery(s, "post", postKey(postID), freshFeed, soft,
		func(ctx context.Context) (*models.Post, error) {
			return s.api.GetPost(ctx, postID)
		})
}

// Follow graph queries.

// IsFollowing binds the follow membership check between caller and coach.
func (s *Service) IsFollowing(caller, coach models.Principal) *Query[bool] {
	soft := func() bool { return false }
	if caller.IsAnonymous() || coach.IsAnonymous() {
		return newInertQuery("isFollowing", soft)
	}
	return newQuery(s, "isFollowing", isFollowingKey(caller, coach), freshFeed, soft,
		func(ctx context.Context) (bool, error) {
			return s.api.IsFollowing(ctx, caller, coach)
		})
}

// Followers binds a coach's follower list.
func (s *Service) Followers(coach models.Principal) *Query[[]models.Principal] {
	soft := func() []models.Principal { return nil }
	if coach.IsAnonymous() {
		return newInertQuery("followers", soft)
	}
	return newQuery(s, "followers", followersKey(coach), freshLive, soft,
		func(ctx context.Context) ([]models.Principal, error) {
			return s.api.GetFollowers(ctx, coach)
		})
}

// Following binds the list of coaches a coach follows.
func (s *Service) Following(coach models.Principal) *Query[[]models.Principal] {
	soft := func() []models.Principal { return nil }
	if coach.IsAnonymous() {
		return newInertQuery("following", soft)
	}
	return newQuery(s, "following", followingKey(coach), freshLive, soft,
		func(ctx context.Context) ([]models.Principal, error) {
			return s.api.GetFollowing(ctx, coach)
		})
}

// FollowersCount binds a coach's follower count.
func (s *Service) FollowersCount(coach models.Principal) *Query[int] {
	soft := func() int { return 0 }
	if coach.IsAnonymous() {
		return newInertQuery("followersCount", soft)
	}
	return newQuery(s, "followersCount", cache.Key(keyFollowers, coach.String(), "count"), freshLive, soft,
		func(ctx context.Context) (int, error) {
			return s.api.GetFollowersCount(ctx, coach)
		})
}

// FollowingCount binds a coach's following count.
func (s *Service) FollowingCount(coach models.Principal) *Query[int] {
	soft := func() int { return 0 }
	if coach.IsAnonymous() {
		return newInertQuery("followingCount", soft)
	}
	return newQuery(s, "followingCount", cache.Key(keyFollowing, coach.String(), "count"), freshLive, soft,
		func(ctx context.Context) (int, error) {
			return s.api.GetFollowingCount(ctx, coach)
		})
}

// FollowerDetails binds the expanded follower/following view.
func (s *Service) FollowerDetails(follower, coach models.Principal) *Query[*models.FollowerDetail] {
	soft := func() *models.FollowerDetail { return nil }
	if follower.IsAnonymous() || coach.IsAnonymous() {
		return newInertQuery("followerDetails", soft)
	}
	return newQuery(s, "followerDetails", followerDetailsKey(follower, coach), freshLive, soft,
		func(ctx context.Context) (*models.FollowerDetail, error) {
			return s.api.GetFollowerDetails(ctx, follower, coach)
		})
}

// MyConnections binds the caller's legacy connection list.
func (s *Service) MyConnections() *Query[[]models.Principal] {
	return newQuery(s, "myConnections", keyMyConnections, freshLive,
		func() []models.Principal { return nil },
		s.api.GetMyConnections)
}

// Job board queries.

// JobPostings binds the job board listing.
func (s *Service) JobPostings() *Query[[]models.JobPost] {
	return newQuery(s, "jobPostings", keyJobPostings, freshLive,
		func() []models.JobPost { return nil },
		s.api.GetJobPostings)
}

// JobApplications binds the applications on one job posting.
func (s *Service) JobApplications(jobID string) *Query[[]models.Application] {
	soft := func() []models.Application { return nil }
	if jobID == "" {
		return newInertQuery("jobApplications", soft)
	}
	return newQuery(s, "jobApplications", jobApplicationsKey(jobID), freshLive, soft,
		func(ctx context.Context) ([]models.Application, error) {
			return s.api.GetJobApplications(ctx, jobID)
		})
}

// MyApplications binds the caller's submitted applications. Its cached value
// backs the duplicate-application guard.
func (s *Service) MyApplications() *Query[[]models.JobApplication] {
	return newQuery(s, "myApplications", keyMyApplications, freshLive,
		func() []models.JobApplication { return nil },
		s.api.GetMyApplications)
}

// Messaging queries.

// DirectMessages binds the conversation with another user. An empty principal
// models no selected conversation and yields an inert binding.
func (s *Service) DirectMessages(other models.Principal) *Query[[]models.DirectMessage] {
	soft := func() []models.DirectMessage { return nil }
	if other.IsAnonymous() {
		return newInertQuery("directMessages", soft)
	}
	return newQuery(s, "directMessages", directMessagesKey(other), freshLive, soft,
		func(ctx context.Context) ([]models.DirectMessage, error) {
			return s.api.GetDirectMessages(ctx, other)
		})
}

// GroupMessages binds a group conversation.
func (s *Service) GroupMessages(groupID string) *Query[[]models.GroupMessage] {
	soft := func() []models.GroupMessage { return nil }
	if groupID == "" {
		return newInertQuery("groupMessages", soft)
	}
	return newQuery(s, "groupMessages", groupMessagesKey(groupID), freshLive, soft,
		func(ctx context.Context) ([]models.GroupMessage, error) {
			return s.api.GetGroupMessages(ctx, groupID)
		})
}

// BootstrapResult is the outcome of the session bootstrap.
type BootstrapResult struct {
	Profile    *models.CoachProfile
	TimedOut   bool
	NeedsSetup bool
}

// Bootstrap resolves the caller profile under the profile-ready timeout. On
// timeout the dashboard is shown anyway; the fetch lands in the cache
// whenever it completes.
func (s *Service) Bootstrap(ctx context.Context) BootstrapResult {
	profile, timedOut := s.sess.AwaitProfileReady(ctx, s.CallerProfile().Get)
	return BootstrapResult{
		Profile:    profile,
		TimedOut:   timedOut,
		NeedsSetup: session.NeedsProfileSetup(profile),
	}
}
