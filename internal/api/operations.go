package api

import (
	"context"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"
)

// Argument payloads follow the backend's wire names. Single-field operations
// inline anonymous structs at the call site.

type profileArgs struct {
	Name             string       `json:"name"`
	Experience       int          `json:"experience"`
	Specialty        string       `json:"specialty"`
	Certifications   []string     `json:"certifications"`
	Photo            *models.Blob `json:"photo,omitempty"`
	Bio              string       `json:"bio"`
	PositionsCoached []string     `json:"positions_coached"`
	Location         string       `json:"location"`
	CoachingRoles    []string     `json:"coaching_roles"`
}

// ProfileParams carries the fields of a profile create/update call.
type ProfileParams struct {
	Name             string
	Experience       int
	Specialty        string
	Certifications   []string
	Photo            *models.Blob
	Bio              string
	PositionsCoached []string
	Location         string
	CoachingRoles    []string
}

func (p ProfileParams) wire() profileArgs {
	return profileArgs{
		Name:             p.Name,
		Experience:       p.Experience,
		Specialty:        p.Specialty,
		Certifications:   p.Certifications,
		Photo:            p.Photo,
		Bio:              p.Bio,
		PositionsCoached: p.PositionsCoached,
		Location:         p.Location,
		CoachingRoles:    p.CoachingRoles,
	}
}

// JobParams carries the fields of a job posting call.
type JobParams struct {
	Title                string  `json:"title"`
	Role                 string  `json:"role"`
	Level                string  `json:"level"`
	SchoolOrOrganization string  `json:"school_or_organization"`
	Location             string  `json:"location"`
	Compensation         *string `json:"compensation,omitempty"`
	Requirements         string  `json:"requirements"`
	AdditionalInfo       string  `json:"additional_info"`
}

// Profile operations.

func (c *Client) GetCallerProfile(ctx context.Context) (*models.CoachProfile, error) {
	return call[*models.CoachProfile](ctx, c, "getCallerUserProfile", nil)
}

func (c *Client) InitializeCallerProfile(ctx context.Context) (*models.CoachProfile, error) {
	return call[*models.CoachProfile](ctx, c, "initializeCallerProfile", nil)
}

func (c *Client) SaveCallerProfile(ctx context.Context, profile models.CoachProfile) error {
	return callVoid(ctx, c, "saveCallerUserProfile", struct {
		Profile models.CoachProfile `json:"profile"`
	}{profile})
}

func (c *Client) CreateProfile(ctx context.Context, params ProfileParams) error {
	return callVoid(ctx, c, "createProfile", params.wire())
}

func (c *Client) UpdateProfile(ctx context.Context, params ProfileParams) error {
	return callVoid(ctx, c, "updateProfile", params.wire())
}

func (c *Client) GetProfile(ctx context.Context, user models.Principal) (*models.CoachProfile, error) {
	return call[*models.CoachProfile](ctx, c, "getProfile", struct {
		UserID models.Principal `json:"user_id"`
	}{user})
}

func (c *Client) GetUserProfile(ctx context.Context, user models.Principal) (*models.CoachProfile, error) {
	return call[*models.CoachProfile](ctx, c, "getUserProfile", struct {
		UserID models.Principal `json:"user_id"`
	}{user})
}

func (c *Client) GetAllProfiles(ctx context.Context) ([]models.CoachProfile, error) {
	return call[[]models.CoachProfile](ctx, c, "getAllProfiles", nil)
}

func (c *Client) GetCoachCount(ctx context.Context) (int, error) {
	return call[int](ctx, c, "getCoachCount", nil)
}

func (c *Client) GetCoachPhoto(ctx context.Context, coach models.Principal) (*models.Blob, error) {
	return call[*models.Blob](ctx, c, "getCoachPhoto", struct {
		CoachID models.Principal `json:"coach_id"`
	}{coach})
}

func (c *Client) SaveProfilePhoto(ctx context.Context, photo models.Blob) error {
	return callVoid(ctx, c, "saveProfilePhoto", struct {
		Photo models.Blob `json:"photo"`
	}{photo})
}

func (c *Client) GetCoachProfileDetail(ctx context.Context, coach models.Principal) (*models.CoachProfileDetail, error) {
	return call[*models.CoachProfileDetail](ctx, c, "getCoachProfileDetail", struct {
		CoachID models.Principal `json:"coach_id"`
	}{coach})
}

// Feed operations.

func (c *Client) GetFeed(ctx context.Context) ([]models.Post, error) {
	return call[[]models.Post](ctx, c, "getFeed", nil)
}

func (c *Client) GetFeedCategories(ctx context.Context) (*models.FeedCategories, error) {
	return call[*models.FeedCategories](ctx, c, "getFeedCategories", nil)
}

func (c *Client) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return call[*models.Post](ctx, c, "getPost", struct {
		PostID string `json:"post_id"`
	}{postID})
}

func (c *Client) GetPostAttachments(ctx context.Context, postID string) ([]models.Attachment, error) {
	return call[[]models.Attachment](ctx, c, "getPostAttachments", struct {
		PostID string `json:"post_id"`
	}{postID})
}

func (c *Client) CreatePost(ctx context.Context, content string, attachments []models.Attachment) error {
	return callVoid(ctx, c, "createPost", struct {
		Content     string              `json:"content"`
		Attachments []models.Attachment `json:"attachments"`
	}{content, attachments})
}

func (c *Client) UpdatePost(ctx context.Context, postID, content string, attachments []models.Attachment) error {
	return callVoid(ctx, c, "updatePost", struct {
		PostID      string              `json:"post_id"`
		Content     string              `json:"content"`
		Attachments []models.Attachment `json:"attachments"`
	}{postID, content, attachments})
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return callVoid(ctx, c, "deletePost", struct {
		PostID string `json:"post_id"`
	}{postID})
}

func (c *Client) ToggleLikePost(ctx context.Context, postID string) (bool, error) {
	return call[bool](ctx, c, "toggleLikePost", struct {
		PostID string `json:"post_id"`
	}{postID})
}

func (c *Client) AddComment(ctx context.Context, postID, content string) error {
	return callVoid(ctx, c, "addComment", struct {
		PostID  string `json:"post_id"`
		Content string `json:"content"`
	}{postID, content})
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	return callVoid(ctx, c, "deleteComment", struct {
		PostID    string `json:"post_id"`
		CommentID string `json:"comment_id"`
	}{postID, commentID})
}

func (c *Client) ToggleLikeComment(ctx context.Context, postID, commentID string) (bool, error) {
	return call[bool](ctx, c, "toggleLikeComment", struct {
		PostID    string `json:"post_id"`
		CommentID string `json:"comment_id"`
	}{postID, commentID})
}

func (c *Client) MarkPostViewed(ctx context.Context, postID string) error {
	return callVoid(ctx, c, "markPostViewed", struct {
		PostID string `json:"post_id"`
	}{postID})
}

func (c *Client) MarkPostsViewed(ctx context.Context, postIDs []string) error {
	return callVoid(ctx, c, "markPostsViewed", struct {
		PostIDs []string `json:"post_ids"`
	}{postIDs})
}

// Job board operations.

func (c *Client) GetJobPostings(ctx context.Context) ([]models.JobPost, error) {
	return call[[]models.JobPost](ctx, c, "getJobPostings", nil)
}

func (c *Client) PostJob(ctx context.Context, params JobParams) error {
	return callVoid(ctx, c, "postJob", params)
}

func (c *Client) DeleteJobPosting(ctx context.Context, jobID string) error {
	return callVoid(ctx, c, "deleteJobPosting", struct {
		JobID string `json:"job_id"`
	}{jobID})
}

func (c *Client) ApplyForJob(ctx context.Context, jobID, coverLetter string) error {
	return callVoid(ctx, c, "applyForJob", struct {
		JobID       string `json:"job_id"`
		CoverLetter string `json:"cover_letter"`
	}{jobID, coverLetter})
}

func (c *Client) GetJobApplications(ctx context.Context, jobID string) ([]models.Application, error) {
	return call[[]models.Application](ctx, c, "getJobApplications", struct {
		JobID string `json:"job_id"`
	}{jobID})
}

func (c *Client) GetMyApplications(ctx context.Context) ([]models.JobApplication, error) {
	return call[[]models.JobApplication](ctx, c, "getMyApplications", nil)
}

// Follow graph operations.

func (c *Client) FollowCoach(ctx context.Context, coach models.Principal) error {
	return callVoid(ctx, c, "followCoach", struct {
		CoachID models.Principal `json:"coach_id"`
	}{coach})
}

func (c *Client) UnfollowCoach(ctx context.Context, coach models.Principal) error {
	return callVoid(ctx, c, "unfollowCoach", struct {
		CoachID models.Principal `json:"coach_id"`
	}{coach})
}

func (c *Client) IsFollowing(ctx context.Context, caller, coach models.Principal) (bool, error) {
	return call[bool](ctx, c, "isFollowing", struct {
		CallerID models.Principal `json:"caller_id"`
		CoachID  models.Principal `json:"coach_id"`
	}{caller, coach})
}

func (c *Client) GetFollowers(ctx context.Context, coach models.Principal) ([]models.Principal, error) {
	return call[[]models.Principal](ctx, c, "getFollowers", struct {
		CoachID models.Principal `json:"coach_id"`
	}{coach})
}

func (c *Client) GetFollowing(ctx context.Context, coach models.Principal) ([]models.Principal, error) {
	return call[[]models.Principal](ctx, c, "getFollowing", struct {
		CoachID models.Principal `json:"coach_id"`
	}{coach})
}

func (c *Client) GetFollowersCount(ctx context.Context, coach models.Principal) (int, error) {
	return call[int](ctx, c, "getFollowersCount", struct {
		CoachID models.Principal `json:"coach_id"`
	}{coach})
}

func (c *Client) GetFollowingCount(ctx context.Context, coach models.Principal) (int, error) {
	return call[int](ctx, c, "getFollowingCount", struct {
		CoachID models.Principal `json:"coach_id"`
	}{coach})
}

func (c *Client) GetFollowerDetails(ctx context.Context, follower, coach models.Principal) (*models.FollowerDetail, error) {
	return call[*models.FollowerDetail](ctx, c, "getFollowerDetails", struct {
		FollowerID models.Principal `json:"follower_id"`
		CoachID    models.Principal `json:"coach_id"`
	}{follower, coach})
}

func (c *Client) ConnectWithCoach(ctx context.Context, coach models.Principal) error {
	return callVoid(ctx, c, "connectWithCoach", struct {
		CoachID models.Principal `json:"coach_id"`
	}{coach})
}

func (c *Client) GetMyConnections(ctx context.Context) ([]models.Principal, error) {
	return call[[]models.Principal](ctx, c, "getMyConnections", nil)
}

func (c *Client) GetConnections(ctx context.Context, user models.Principal) ([]models.Principal, error) {
	return call[[]models.Principal](ctx, c, "getConnections", struct {
		UserID models.Principal `json:"user_id"`
	}{user})
}

// Messaging operations.

func (c *Client) GetDirectMessages(ctx context.Context, other models.Principal) ([]models.DirectMessage, error) {
	return call[[]models.DirectMessage](ctx, c, "getDirectMessages", struct {
		OtherUser models.Principal `json:"other_user"`
	}{other})
}

func (c *Client) SendDirectMessage(ctx context.Context, receiver models.Principal, content string) error {
	return callVoid(ctx, c, "sendDirectMessage", struct {
		Receiver models.Principal `json:"receiver"`
		Content  string           `json:"content"`
	}{receiver, content})
}

func (c *Client) GetGroupMessages(ctx context.Context, groupID string) ([]models.GroupMessage, error) {
	return call[[]models.GroupMessage](ctx, c, "getGroupMessages", struct {
		GroupID string `json:"group_id"`
	}{groupID})
}

func (c *Client) SendGroupMessage(ctx context.Context, groupID, content string) error {
	return callVoid(ctx, c, "sendGroupMessage", struct {
		GroupID string `json:"group_id"`
		Content string `json:"content"`
	}{groupID, content})
}

// Admin operations.

func (c *Client) IsCallerAdmin(ctx context.Context) (bool, error) {
	return call[bool](ctx, c, "isCallerAdmin", nil)
}

func (c *Client) GetCallerUserRole(ctx context.Context) (models.UserRole, error) {
	return call[models.UserRole](ctx, c, "getCallerUserRole", nil)
}

func (c *Client) AssignUserRole(ctx context.Context, user models.Principal, role models.UserRole) error {
	return callVoid(ctx, c, "assignCallerUserRole", struct {
		User models.Principal `json:"user"`
		Role models.UserRole  `json:"role"`
	}{user, role})
}

func (c *Client) DeleteUser(ctx context.Context, target models.Principal) error {
	return callVoid(ctx, c, "deleteUser", struct {
		Target models.Principal `json:"target"`
	}{target})
}

func (c *Client) SubmitReport(ctx context.Context) error {
	return callVoid(ctx, c, "submitReport", nil)
}

func (c *Client) HasNewBannerNotification(ctx context.Context) (bool, error) {
	return call[bool](ctx, c, "hasNewBannerNotification", nil)
}

func (c *Client) DismissBannerNotification(ctx context.Context) error {
	return callVoid(ctx, c, "dismissBannerNotification", nil)
}
