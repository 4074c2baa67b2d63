package queries

import (
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/cache"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"
)

// Freshness windows per operation class. Zero means every read refetches.
const (
	freshProfile   = 5 * time.Minute
	freshDirectory = 2 * time.Minute
	freshFeed      = 30 * time.Second
	freshLive      = time.Duration(0)
)

// BannerPollInterval is how often the admin banner flag is re-polled while a
// banner view is mounted.
const BannerPollInterval = 30 * time.Second

// Cache key prefixes. Parameterized keys append the parameter tuple so every
// distinct parameterization caches separately.
const (
	keyCallerProfile   = "currentUserProfile"
	keyAllProfiles     = "allProfiles"
	keyCoachCount      = "coachCount"
	keyProfile         = "profile"
	keyCoachPhoto      = "coachPhoto"
	keyProfileDetail   = "coachProfileDetail"
	keyIsAdmin         = "isCallerAdmin"
	keyBanner          = "hasNewBannerNotification"
	keyFeed            = "socialFeed"
	keyFeedCategories  = "feedCategories"
	keyPost            = "post"
	keyIsFollowing     = "isFollowing"
	keyFollowers       = "followers"
	keyFollowing       = "following"
	keyFollowerDetails = "followerDetails"
	keyMyConnections   = "myConnections"
	keyJobPostings     = "jobPostings"
	keyJobApplications = "jobApplications"
	keyMyApplications  = "myApplications"
	keyDirectMessages  = "directMessages"
	keyGroupMessages   = "groupMessages"
)

func profileKey(user models.Principal) string {
	return cache.Key(keyProfile, user.String())
}

func coachPhotoKey(coach models.Principal) string {
	return cache.Key(keyCoachPhoto, coach.String())
}

func profileDetailKey(coach models.Principal) string {
	return cache.Key(keyProfileDetail, coach.String())
}

func postKey(postID string) string {
	return cache.Key(keyPost, postID)
}

func isFollowingKey(caller, coach models.Principal) string {
	return cache.Key(keyIsFollowing, caller.String(), coach.String())
}

func followersKey(coach models.Principal) string {
	return cache.Key(keyFollowers, coach.String())
}

func followingKey(coach models.Principal) string {
	return cache.Key(keyFollowing, coach.String())
}

func followerDetailsKey(follower, coach models.Principal) string {
	return cache.Key(keyFollowerDetails, follower.String(), coach.String())
}

func jobApplicationsKey(jobID string) string {
	return cache.Key(keyJobApplications, jobID)
}

func directMessagesKey(other models.Principal) string {
	return cache.Key(keyDirectMessages, other.String())
}

func groupMessagesKey(groupID string) string {
	return cache.Key(keyGroupMessages, groupID)
}
