package queries

import (
	"context"
	"errors"
	"fmt"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/api"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrAlreadyApplied is returned when the caller already has an application on
// the target job. Checked client-side before any facade call.
var ErrAlreadyApplied = errors.New("an application for this job was already submitted")

// None is the payload/result type for operations without one.
type None struct{}

func newMutation[P, R any](s *Service, name, failurePrefix string, run func(context.Context, P) (R, error)) *Mutation[P, R] {
	return &Mutation[P, R]{
		name:          name,
		store:         s.store,
		notifier:      s.notifier,
		failurePrefix: failurePrefix,
		run:           run,
	}
}

func staticPrefixes[P any](prefixes ...string) func(P) []string {
	return func(P) []string { return prefixes }
}

func staticMessage[P any](msg string) func(P) string {
	return func(P) string { return msg }
}

// Profile mutations.

// InitializeProfile creates the caller's empty profile on first login. The
// returned profile seeds the cache directly to skip a redundant round-trip.
func (s *Service) InitializeProfile() *Mutation[None, *models.CoachProfile] {
	m := newMutation(s, "initializeProfile", "Failed to initialize profile",
		func(ctx context.Context, _ None) (*models.CoachProfile, error) {
			return s.api.InitializeCallerProfile(ctx)
		})
	m.seed = func(_ None, profile *models.CoachProfile) {
		if profile != nil {
			s.store.Put(keyCallerProfile, profile, freshProfile)
		}
	}
	m.invalidates = staticPrefixes[None](keyCallerProfile, keyAllProfiles, keyCoachCount)
	return m
}

// SaveProfile persists the caller's full profile.
func (s *Service) SaveProfile() *Mutation[models.CoachProfile, None] {
	m := newMutation(s, "saveProfile", "Failed to save profile",
		func(ctx context.Context, profile models.CoachProfile) (None, error) {
			return None{}, s.api.SaveCallerProfile(ctx, profile)
		})
	m.invalidates = func(profile models.CoachProfile) []string {
		return []string{
			keyCallerProfile,
			coachPhotoKey(profile.UserID),
			keyAllProfiles,
			keyCoachCount,
		}
	}
	m.successMsg = staticMessage[models.CoachProfile]("Profile saved successfully")
	return m
}

// UpdateProfile updates the caller's profile fields.
func (s *Service) UpdateProfile() *Mutation[api.ProfileParams, None] {
	m := newMutation(s, "updateProfile", "Failed to update profile",
		func(ctx context.Context, params api.ProfileParams) (None, error) {
			return None{}, s.api.UpdateProfile(ctx, params)
		})
	m.invalidates = func(api.ProfileParams) []string {
		self := s.sess.Identity()
		return []string{
			keyCallerProfile,
			coachPhotoKey(self),
			keyAllProfiles,
			profileDetailKey(self),
		}
	}
	m.successMsg = staticMessage[api.ProfileParams]("Profile updated successfully")
	return m
}

// SaveProfilePhoto stores a new profile photo.
func (s *Service) SaveProfilePhoto() *Mutation[models.Blob, None] {
	m := newMutation(s, "saveProfilePhoto", "Failed to save profile photo",
		func(ctx context.Context, photo models.Blob) (None, error) {
			return None{}, s.api.SaveProfilePhoto(ctx, photo)
		})
	m.invalidates = func(models.Blob) []string {
		return []string{keyCallerProfile, coachPhotoKey(s.sess.Identity())}
	}
	return m
}

// Feed mutations. All of them touch the feed caches and the author's profile
// detail, which embeds authored posts.

// CreatePostParams is the payload for CreatePost.
type CreatePostParams struct {
	Content     string
	Attachments []models.Attachment
}

// CreatePost publishes a new feed post.
func (s *Service) CreatePost() *Mutation[CreatePostParams, None] {
	m := newMutation(s, "createPost", "Failed to create post",
		func(ctx context.Context, p CreatePostParams) (None, error) {
			return None{}, s.api.CreatePost(ctx, p.Content, p.Attachments)
		})
	m.invalidates = staticPrefixes[CreatePostParams](keyFeed, keyFeedCategories, keyProfileDetail)
	m.successMsg = staticMessage[CreatePostParams]("Post created successfully")
	return m
}

// UpdatePostParams is the payload for UpdatePost.
type UpdatePostParams struct {
	PostID      string
	Content     string
	Attachments []models.Attachment
}

// UpdatePost edits a post's content and attachments.
func (s *Service) UpdatePost() *Mutation[UpdatePostParams, None] {
	m := newMutation(s, "updatePost", "Failed to update post",
		func(ctx context.Context, p UpdatePostParams) (None, error) {
			return None{}, s.api.UpdatePost(ctx, p.PostID, p.Content, p.Attachments)
		})
	m.invalidates = staticPrefixes[UpdatePostParams](keyFeed, keyFeedCategories, keyProfileDetail)
	m.successMsg = staticMessage[UpdatePostParams]("Post updated successfully")
	return m
}

// DeletePost removes a post. Allowed for the author or an admin.
func (s *Service) DeletePost() *Mutation[string, None] {
	m := newMutation(s, "deletePost", "Failed to delete post",
		func(ctx context.Context, postID string) (None, error) {
			return None{}, s.api.DeletePost(ctx, postID)
		})
	m.invalidates = staticPrefixes[string](keyFeed, keyFeedCategories, keyProfileDetail)
	m.successMsg = staticMessage[string]("Post deleted")
	return m
}

// ToggleLikePost flips the caller's like on a post and reports the new state.
func (s *Service) ToggleLikePost() *Mutation[string, bool] {
	m := newMutation(s, "toggleLikePost", "Failed to toggle like",
		func(ctx context.Context, postID string) (bool, error) {
			return s.api.ToggleLikePost(ctx, postID)
		})
	m.invalidates = staticPrefixes[string](keyFeed, keyFeedCategories, keyProfileDetail)
	return m
}

// CommentParams is the payload for AddComment.
type CommentParams struct {
	PostID  string
	Content string
}

// AddComment appends a comment to a post.
func (s *Service) AddComment() *Mutation[CommentParams, None] {
	m := newMutation(s, "addComment", "Failed to add comment",
		func(ctx context.Context, p CommentParams) (None, error) {
			return None{}, s.api.AddComment(ctx, p.PostID, p.Content)
		})
	m.invalidates = staticPrefixes[CommentParams](keyFeed, keyFeedCategories, keyProfileDetail)
	m.successMsg = staticMessage[CommentParams]("Comment added")
	return m
}

// CommentRef addresses a comment within a post.
type CommentRef struct {
	PostID    string
	CommentID string
}

// DeleteComment removes a comment. Allowed for the author or an admin.
func (s *Service) DeleteComment() *Mutation[CommentRef, None] {
	m := newMutation(s, "deleteComment", "Failed to delete comment",
		func(ctx context.Context, ref CommentRef) (None, error) {
			return None{}, s.api.DeleteComment(ctx, ref.PostID, ref.CommentID)
		})
	m.invalidates = staticPrefixes[CommentRef](keyFeed, keyFeedCategories, keyProfileDetail)
	m.successMsg = staticMessage[CommentRef]("Comment deleted")
	return m
}

// ToggleLikeComment flips the caller's like on a comment.
func (s *Service) ToggleLikeComment() *Mutation[CommentRef, bool] {
	m := newMutation(s, "toggleLikeComment", "Failed to toggle comment like",
		func(ctx context.Context, ref CommentRef) (bool, error) {
			return s.api.ToggleLikeComment(ctx, ref.PostID, ref.CommentID)
		})
	m.invalidates = staticPrefixes[CommentRef](keyFeed, keyFeedCategories, keyProfileDetail)
	return m
}

// MarkPostViewed records a post as seen, both locally and on the backend.
// Fire-and-forget: no invalidations, no notifications.
func (s *Service) MarkPostViewed() *Mutation[string, None] {
	return newMutation(s, "markPostViewed", "Failed to mark post viewed",
		func(ctx context.Context, postID string) (None, error) {
			if s.viewed != nil {
				if err := s.viewed.Add(postID); err != nil {
					log.Warn().Err(err).Msg("Failed to persist viewed post")
				}
			}
			return None{}, s.api.MarkPostViewed(ctx, postID)
		})
}

// MarkPostsViewed records a batch of posts as seen.
func (s *Service) MarkPostsViewed() *Mutation[[]string, None] {
	return newMutation(s, "markPostsViewed", "Failed to mark posts viewed",
		func(ctx context.Context, postIDs []string) (None, error) {
			if s.viewed != nil {
				if err := s.viewed.Add(postIDs...); err != nil {
					log.Warn().Err(err).Msg("Failed to persist viewed posts")
				}
			}
			return None{}, s.api.MarkPostsViewed(ctx, postIDs)
		})
}

// Follow graph mutations.

// FollowCoach creates a follow edge from the caller to the coach.
func (s *Service) FollowCoach() *Mutation[models.Principal, None] {
	m := newMutation(s, "followCoach", "Failed to follow",
		func(ctx context.Context, coach models.Principal) (None, error) {
			return None{}, s.api.FollowCoach(ctx, coach)
		})
	m.invalidates = staticPrefixes[models.Principal](
		keyFollowing, keyFollowers, keyProfileDetail, keyFeedCategories, keyIsFollowing)
	m.successMsg = staticMessage[models.Principal]("Now following coach")
	return m
}

// UnfollowCoach removes the follow edge from the caller to the coach.
func (s *Service) UnfollowCoach() *Mutation[models.Principal, None] {
	m := newMutation(s, "unfollowCoach", "Failed to unfollow",
		func(ctx context.Context, coach models.Principal) (None, error) {
			return None{}, s.api.UnfollowCoach(ctx, coach)
		})
	m.invalidates = staticPrefixes[models.Principal](
		keyFollowing, keyFollowers, keyProfileDetail, keyFeedCategories, keyIsFollowing)
	m.successMsg = staticMessage[models.Principal]("Unfollowed coach")
	return m
}

// ConnectWithCoach adds a legacy connection.
func (s *Service) ConnectWithCoach() *Mutation[models.Principal, None] {
	m := newMutation(s, "connectWithCoach", "Failed to connect",
		func(ctx context.Context, coach models.Principal) (None, error) {
			return None{}, s.api.ConnectWithCoach(ctx, coach)
		})
	m.invalidates = staticPrefixes[models.Principal](keyMyConnections, keyFeedCategories)
	m.successMsg = staticMessage[models.Principal]("Connection added")
	return m
}

// Job board mutations.

// PostJob publishes a job posting.
func (s *Service) PostJob() *Mutation[api.JobParams, None] {
	m := newMutation(s, "postJob", "Failed to post job",
		func(ctx context.Context, params api.JobParams) (None, error) {
			return None{}, s.api.PostJob(ctx, params)
		})
	m.invalidates = staticPrefixes[api.JobParams](keyJobPostings, keyProfileDetail)
	m.successMsg = staticMessage[api.JobParams]("Job posted successfully")
	return m
}

// ApplyParams is the payload for ApplyForJob.
type ApplyParams struct {
	JobID       string
	CoverLetter string
}

// ApplyForJob submits an application. A second application to the same job is
// rejected before the facade is called, based on the cached application list.
func (s *Service) ApplyForJob() *Mutation[ApplyParams, None] {
	m := newMutation(s, "applyForJob", "Failed to apply",
		func(ctx context.Context, p ApplyParams) (None, error) {
			return None{}, s.api.ApplyForJob(ctx, p.JobID, p.CoverLetter)
		})
	m.guard = func(p ApplyParams) error {
		if v, ok := s.store.Get(keyMyApplications); ok {
			if apps, ok := v.([]models.JobApplication); ok {
				for _, app := range apps {
					if app.JobID == p.JobID {
						return ErrAlreadyApplied
					}
				}
			}
		}
		return nil
	}
	m.invalidates = staticPrefixes[ApplyParams](keyJobPostings, keyMyApplications)
	m.successMsg = staticMessage[ApplyParams]("Application submitted")
	return m
}

// DeleteJobPosting removes a job posting. Allowed for the poster or an admin.
func (s *Service) DeleteJobPosting() *Mutation[string, None] {
	m := newMutation(s, "deleteJobPosting", "Failed to delete job",
		func(ctx context.Context, jobID string) (None, error) {
			return None{}, s.api.DeleteJobPosting(ctx, jobID)
		})
	m.invalidates = staticPrefixes[string](keyJobPostings, keyProfileDetail)
	m.successMsg = staticMessage[string]("Job posting deleted")
	return m
}

// Messaging mutations.

// DirectMessageParams is the payload for SendDirectMessage.
type DirectMessageParams struct {
	Receiver models.Principal
	Content  string
}

// SendDirectMessage sends a one-to-one message and refreshes that
// conversation only.
func (s *Service) SendDirectMessage() *Mutation[DirectMessageParams, None] {
	m := newMutation(s, "sendDirectMessage", "Failed to send message",
		func(ctx context.Context, p DirectMessageParams) (None, error) {
			return None{}, s.api.SendDirectMessage(ctx, p.Receiver, p.Content)
		})
	m.invalidates = func(p DirectMessageParams) []string {
		return []string{directMessagesKey(p.Receiver)}
	}
	return m
}

// GroupMessageParams is the payload for SendGroupMessage.
type GroupMessageParams struct {
	GroupID string
	Content string
}

// SendGroupMessage posts a message to a group conversation.
func (s *Service) SendGroupMessage() *Mutation[GroupMessageParams, None] {
	m := newMutation(s, "sendGroupMessage", "Failed to send message",
		func(ctx context.Context, p GroupMessageParams) (None, error) {
			return None{}, s.api.SendGroupMessage(ctx, p.GroupID, p.Content)
		})
	m.invalidates = func(p GroupMessageParams) []string {
		return []string{groupMessagesKey(p.GroupID)}
	}
	return m
}

// Admin mutations.

// DismissBanner clears the caller's banner notification flag.
func (s *Service) DismissBanner() *Mutation[None, None] {
	m := newMutation(s, "dismissBannerNotification", "Failed to dismiss notification",
		func(ctx context.Context, _ None) (None, error) {
			return None{}, s.api.DismissBannerNotification(ctx)
		})
	m.invalidates = staticPrefixes[None](keyBanner)
	return m
}

// SubmitReport files a moderation report.
func (s *Service) SubmitReport() *Mutation[None, None] {
	m := newMutation(s, "submitReport", "Failed to submit report",
		func(ctx context.Context, _ None) (None, error) {
			return None{}, s.api.SubmitReport(ctx)
		})
	m.invalidates = staticPrefixes[None](keyBanner)
	m.successMsg = staticMessage[None]("Report submitted successfully")
	return m
}

// AssignRoleParams is the payload for AssignRole.
type AssignRoleParams struct {
	User models.Principal
	Role models.UserRole
}

// AssignRole changes a user's role. Admin only.
func (s *Service) AssignRole() *Mutation[AssignRoleParams, None] {
	m := newMutation(s, "assignUserRole", "Failed to assign role",
		func(ctx context.Context, p AssignRoleParams) (None, error) {
			return None{}, s.api.AssignUserRole(ctx, p.User, p.Role)
		})
	m.invalidates = staticPrefixes[AssignRoleParams](keyIsAdmin)
	m.successMsg = func(p AssignRoleParams) string {
		return fmt.Sprintf("Role %s assigned", p.Role)
	}
	return m
}

// DeleteUser removes a user account and everything it authored. Admin only.
func (s *Service) DeleteUser() *Mutation[models.Principal, None] {
	m := newMutation(s, "deleteUser", "Failed to delete user",
		func(ctx context.Context, target models.Principal) (None, error) {
			return None{}, s.api.DeleteUser(ctx, target)
		})
	m.invalidates = staticPrefixes[models.Principal](
		keyAllProfiles, keyCoachCount, keyProfileDetail, keyFeed, keyFeedCategories, keyJobPostings)
	m.successMsg = staticMessage[models.Principal]("User account deleted successfully")
	return m
}
