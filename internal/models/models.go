package models

import "time"

// Principal is the opaque identity reference assigned to a caller by the
// authentication service. An empty Principal is the anonymous caller.
type Principal string

// String returns the textual form of the principal.
func (p Principal) String() string { return string(p) }

// IsAnonymous reports whether the principal identifies an unauthenticated caller.
func (p Principal) IsAnonymous() bool { return p == "" }

// UserRole gates admin-only operations.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

// Blob references binary content stored by the backend. The URL is a direct
// accessor; raw bytes are fetched through the facade when the URL fails.
type Blob struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Attachment is a binary file attached to a post or profile.
type Attachment struct {
	Blob     Blob   `json:"blob"`
	MimeType string `json:"mime_type"`
	FileName string `json:"file_name"`
}

// CoachProfile represents a coach's public profile. One profile exists per
// identity, created on first login.
type CoachProfile struct {
	UserID           Principal `json:"user_id"`
	Name             string    `json:"name"`
	Bio              string    `json:"bio"`
	Experience       int       `json:"experience"`
	Specialty        string    `json:"specialty"`
	Certifications   []string  `json:"certifications"`
	PositionsCoached []string  `json:"positions_coached"`
	CoachingRoles    []string  `json:"coaching_roles"`
	Location         string    `json:"location"`
	Photo            *Blob     `json:"photo,omitempty"`
}

// Comment is nested under a post.
type Comment struct {
	ID        string      `json:"id"`
	Author    Principal   `json:"author"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Likes     []Principal `json:"likes"`
}

// LikedBy reports whether the given principal has liked the comment.
func (c *Comment) LikedBy(p Principal) bool {
	for _, l := range c.Likes {
		if l == p {
			return true
		}
	}
	return false
}

// Post represents a social feed post.
type Post struct {
	ID          string       `json:"id"`
	Author      Principal    `json:"author"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Likes       []Principal  `json:"likes"`
	Comments    []Comment    `json:"comments"`
	Attachments []Attachment `json:"attachments"`
}

// LikedBy reports whether the given principal has liked the post.
func (p *Post) LikedBy(u Principal) bool {
	for _, l := range p.Likes {
		if l == u {
			return true
		}
	}
	return false
}

// FeedCategories is the categorized feed split.
type FeedCategories struct {
	ForYou    []Post `json:"for_you"`
	Following []Post `json:"following"`
}

// Application is a job application appended to a job posting. At most one
// application exists per (applicant, job) pair.
type Application struct {
	Applicant   Principal    `json:"applicant"`
	CoverLetter string       `json:"cover_letter"`
	Timestamp   time.Time    `json:"timestamp"`
	Profile     CoachProfile `json:"profile"`
}

// JobPost represents a job board posting.
type JobPost struct {
	ID                   string        `json:"id"`
	Poster               Principal     `json:"poster"`
	Title                string        `json:"title"`
	Role                 string        `json:"role"`
	Level                string        `json:"level"`
	SchoolOrOrganization string        `json:"school_or_organization"`
	Location             string        `json:"location"`
	Compensation         *string       `json:"compensation,omitempty"`
	Requirements         string        `json:"requirements"`
	AdditionalInfo       string        `json:"additional_info"`
	Timestamp            time.Time     `json:"timestamp"`
	Applications         []Application `json:"applications"`
}

// JobApplication pairs a job id with the caller's application to it.
type JobApplication struct {
	JobID       string      `json:"job_id"`
	Application Application `json:"application"`
}

// DirectMessage is a one-to-one message, append-only, ordered by timestamp.
type DirectMessage struct {
	Sender    Principal `json:"sender"`
	Receiver  Principal `json:"receiver"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// GroupMessage is a message posted to a named group.
type GroupMessage struct {
	Sender    Principal `json:"sender"`
	GroupID   string    `json:"group_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ProfileEntry pairs a principal with its profile in follower listings.
type ProfileEntry struct {
	User    Principal    `json:"user"`
	Profile CoachProfile `json:"profile"`
}

// CoachProfileDetail aggregates everything shown on a coach's detail view.
type CoachProfileDetail struct {
	Profile        CoachProfile `json:"profile"`
	Posts          []Post       `json:"posts"`
	Comments       []Comment    `json:"comments"`
	Jobs           []JobPost    `json:"jobs"`
	Followers      []Principal  `json:"followers"`
	Following      []Principal  `json:"following"`
	FollowersCount int          `json:"followers_count"`
	FollowingCount int          `json:"following_count"`
	IsAdmin        bool         `json:"is_admin"`
}

// FollowerDetail is the expanded follower/following view for a coach, relative
// to a particular follower.
type FollowerDetail struct {
	IsFollowing bool           `json:"is_following"`
	Followers   []ProfileEntry `json:"followers"`
	Following   []ProfileEntry `json:"following"`
}
