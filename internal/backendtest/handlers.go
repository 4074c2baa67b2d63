package backendtest

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func decodeArgs[T any](w http.ResponseWriter, raw []byte) (T, bool) {
	var args T
	if len(raw) == 0 {
		return args, true
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		respondError(w, "internal", "invalid arguments: "+err.Error(), http.StatusBadRequest)
		return args, false
	}
	return args, true
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")

	s.mu.Lock()
	s.calls[method]++
	if n := s.failures[method]; n > 0 {
		s.failures[method] = n - 1
		s.mu.Unlock()
		respondError(w, "internal", "injected failure", http.StatusInternalServerError)
		return
	}
	delay := s.latency[method]
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	caller := s.callerFromRequest(r)
	if caller.IsAnonymous() {
		respondError(w, "unauthorized", "Unauthorized: authentication required", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, "internal", "failed to read body", http.StatusBadRequest)
		return
	}

	s.dispatch(w, caller, method, body)
}

func (s *Server) isAdmin(caller models.Principal) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roles[caller] == models.RoleAdmin
}

func (s *Server) findPost(postID string) *models.Post {
	for _, p := range s.posts {
		if p.ID == postID {
			return p
		}
	}
	return nil
}

func (s *Server) findJob(jobID string) *models.JobPost {
	for _, j := range s.jobs {
		if j.ID == jobID {
			return j
		}
	}
	return nil
}

func toggleMembership(set []models.Principal, p models.Principal) ([]models.Principal, bool) {
	for i, member := range set {
		if member == p {
			return append(set[:i], set[i+1:]...), false
		}
	}
	return append(set, p), true
}

func (s *Server) dispatch(w http.ResponseWriter, caller models.Principal, method string, body []byte) {
	switch method {

	// Profile operations.

	case "getCallerUserProfile":
		s.mu.RLock()
		profile := s.profiles[caller]
		s.mu.RUnlock()
		respondJSON(w, profile)

	case "initializeCallerProfile":
		s.mu.Lock()
		profile, ok := s.profiles[caller]
		if !ok {
			profile = &models.CoachProfile{UserID: caller}
			s.profiles[caller] = profile
			if _, has := s.roles[caller]; !has {
				s.roles[caller] = models.RoleUser
			}
		}
		s.mu.Unlock()
		respondJSON(w, profile)

	case "saveCallerUserProfile":
		args, ok := decodeArgs[struct {
			Profile models.CoachProfile `json:"profile"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		p := args.Profile
		p.UserID = caller
		s.profiles[caller] = &p
		s.mu.Unlock()
		respondJSON(w, nil)

	case "createProfile", "updateProfile":
		args, ok := decodeArgs[struct {
			Name             string       `json:"name"`
			Experience       int          `json:"experience"`
			Specialty        string       `json:"specialty"`
			Certifications   []string     `json:"certifications"`
			Photo            *models.Blob `json:"photo"`
			Bio              string       `json:"bio"`
			PositionsCoached []string     `json:"positions_coached"`
			Location         string       `json:"location"`
			CoachingRoles    []string     `json:"coaching_roles"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		s.profiles[caller] = &models.CoachProfile{
			UserID:           caller,
			Name:             args.Name,
			Experience:       args.Experience,
			Specialty:        args.Specialty,
			Certifications:   args.Certifications,
			Photo:            args.Photo,
			Bio:              args.Bio,
			PositionsCoached: args.PositionsCoached,
			Location:         args.Location,
			CoachingRoles:    args.CoachingRoles,
		}
		s.mu.Unlock()
		respondJSON(w, nil)

	case "getProfile", "getUserProfile":
		args, ok := decodeArgs[struct {
			UserID models.Principal `json:"user_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		profile := s.profiles[args.UserID]
		s.mu.RUnlock()
		respondJSON(w, profile)

	case "getAllProfiles":
		s.mu.RLock()
		profiles := make([]models.CoachProfile, 0, len(s.profiles))
		for _, p := range s.profiles {
			profiles = append(profiles, *p)
		}
		s.mu.RUnlock()
		respondJSON(w, profiles)

	case "getCoachCount":
		s.mu.RLock()
		count := len(s.profiles)
		s.mu.RUnlock()
		respondJSON(w, count)

	case "getCoachPhoto":
		args, ok := decodeArgs[struct {
			CoachID models.Principal `json:"coach_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		var photo *models.Blob
		if p := s.profiles[args.CoachID]; p != nil {
			photo = p.Photo
		}
		s.mu.RUnlock()
		respondJSON(w, photo)

	case "saveProfilePhoto":
		args, ok := decodeArgs[struct {
			Photo models.Blob `json:"photo"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		if p := s.profiles[caller]; p != nil {
			photo := args.Photo
			p.Photo = &photo
		}
		s.mu.Unlock()
		respondJSON(w, nil)

	case "getCoachProfileDetail":
		args, ok := decodeArgs[struct {
			CoachID models.Principal `json:"coach_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		profile := s.profiles[args.CoachID]
		if profile == nil {
			s.mu.RUnlock()
			respondJSON(w, nil)
			return
		}
		detail := models.CoachProfileDetail{
			Profile: *profile,
			IsAdmin: s.roles[args.CoachID] == models.RoleAdmin,
		}
		for _, p := range s.posts {
			if p.Author == args.CoachID {
				detail.Posts = append(detail.Posts, *p)
			}
			for _, c := range p.Comments {
				if c.Author == args.CoachID {
					detail.Comments = append(detail.Comments, c)
				}
			}
		}
		for _, j := range s.jobs {
			if j.Poster == args.CoachID {
				detail.Jobs = append(detail.Jobs, *j)
			}
		}
		for follower, followees := range s.follows {
			if followees[args.CoachID] {
				detail.Followers = append(detail.Followers, follower)
			}
		}
		for followee := range s.follows[args.CoachID] {
			detail.Following = append(detail.Following, followee)
		}
		detail.FollowersCount = len(detail.Followers)
		detail.FollowingCount = len(detail.Following)
		s.mu.RUnlock()
		respondJSON(w, detail)

	// Feed operations.

	case "getFeed":
		s.mu.RLock()
		feed := make([]models.Post, 0, len(s.posts))
		for _, p := range s.posts {
			feed = append(feed, *p)
		}
		s.mu.RUnlock()
		respondJSON(w, feed)

	case "getFeedCategories":
		s.mu.RLock()
		categories := models.FeedCategories{}
		followees := s.follows[caller]
		for _, p := range s.posts {
			categories.ForYou = append(categories.ForYou, *p)
			if followees[p.Author] {
				categories.Following = append(categories.Following, *p)
			}
		}
		s.mu.RUnlock()
		respondJSON(w, categories)

	case "getPost":
		args, ok := decodeArgs[struct {
			PostID string `json:"post_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		post := s.findPost(args.PostID)
		var copied *models.Post
		if post != nil {
			c := *post
			copied = &c
		}
		s.mu.RUnlock()
		respondJSON(w, copied)

	case "getPostAttachments":
		args, ok := decodeArgs[struct {
			PostID string `json:"post_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		var attachments []models.Attachment
		if post := s.findPost(args.PostID); post != nil {
			attachments = append(attachments, post.Attachments...)
		}
		s.mu.RUnlock()
		respondJSON(w, attachments)

	case "createPost":
		args, ok := decodeArgs[struct {
			Content     string              `json:"content"`
			Attachments []models.Attachment `json:"attachments"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		s.posts = append(s.posts, &models.Post{
			ID:          uuid.New().String(),
			Author:      caller,
			Content:     args.Content,
			Timestamp:   time.Now(),
			Attachments: args.Attachments,
		})
		s.mu.Unlock()
		respondJSON(w, nil)

	case "updatePost":
		args, ok := decodeArgs[struct {
			PostID      string              `json:"post_id"`
			Content     string              `json:"content"`
			Attachments []models.Attachment `json:"attachments"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		post := s.findPost(args.PostID)
		if post == nil {
			s.mu.Unlock()
			respondError(w, "not_found", "post not found", http.StatusNotFound)
			return
		}
		if post.Author != caller {
			s.mu.Unlock()
			respondError(w, "unauthorized", "only the author may edit a post", http.StatusForbidden)
			return
		}
		post.Content = args.Content
		post.Attachments = args.Attachments
		s.mu.Unlock()
		respondJSON(w, nil)

	case "deletePost":
		args, ok := decodeArgs[struct {
			PostID string `json:"post_id"`
		}](w, body)
		if !ok {
			return
		}
		admin := s.isAdmin(caller)
		s.mu.Lock()
		for i, p := range s.posts {
			if p.ID == args.PostID {
				if p.Author != caller && !admin {
					s.mu.Unlock()
					respondError(w, "unauthorized", "only the author or an admin may delete a post", http.StatusForbidden)
					return
				}
				s.posts = append(s.posts[:i], s.posts[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		respondJSON(w, nil)

	case "toggleLikePost":
		args, ok := decodeArgs[struct {
			PostID string `json:"post_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		post := s.findPost(args.PostID)
		if post == nil {
			s.mu.Unlock()
			respondError(w, "not_found", "post not found", http.StatusNotFound)
			return
		}
		var liked bool
		post.Likes, liked = toggleMembership(post.Likes, caller)
		s.mu.Unlock()
		respondJSON(w, liked)

	case "addComment":
		args, ok := decodeArgs[struct {
			PostID  string `json:"post_id"`
			Content string `json:"content"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		post := s.findPost(args.PostID)
		if post == nil {
			s.mu.Unlock()
			respondError(w, "not_found", "post not found", http.StatusNotFound)
			return
		}
		post.Comments = append(post.Comments, models.Comment{
			ID:        uuid.New().String(),
			Author:    caller,
			Content:   args.Content,
			Timestamp: time.Now(),
		})
		s.mu.Unlock()
		respondJSON(w, nil)

	case "deleteComment":
		args, ok := decodeArgs[struct {
			PostID    string `json:"post_id"`
			CommentID string `json:"comment_id"`
		}](w, body)
		if !ok {
			return
		}
		admin := s.isAdmin(caller)
		s.mu.Lock()
		post := s.findPost(args.PostID)
		if post == nil {
			s.mu.Unlock()
			respondError(w, "not_found", "post not found", http.StatusNotFound)
			return
		}
		for i, c := range post.Comments {
			if c.ID == args.CommentID {
				if c.Author != caller && !admin {
					s.mu.Unlock()
					respondError(w, "unauthorized", "only the author or an admin may delete a comment", http.StatusForbidden)
					return
				}
				post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		respondJSON(w, nil)

	case "toggleLikeComment":
		args, ok := decodeArgs[struct {
			PostID    string `json:"post_id"`
			CommentID string `json:"comment_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		post := s.findPost(args.PostID)
		if post == nil {
			s.mu.Unlock()
			respondError(w, "not_found", "post not found", http.StatusNotFound)
			return
		}
		var liked bool
		for i := range post.Comments {
			if post.Comments[i].ID == args.CommentID {
				post.Comments[i].Likes, liked = toggleMembership(post.Comments[i].Likes, caller)
				break
			}
		}
		s.mu.Unlock()
		respondJSON(w, liked)

	case "markPostViewed":
		args, ok := decodeArgs[struct {
			PostID string `json:"post_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		if s.viewedPosts[caller] == nil {
			s.viewedPosts[caller] = make(map[string]bool)
		}
		s.viewedPosts[caller][args.PostID] = true
		s.mu.Unlock()
		respondJSON(w, nil)

	case "markPostsViewed":
		args, ok := decodeArgs[struct {
			PostIDs []string `json:"post_ids"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		if s.viewedPosts[caller] == nil {
			s.viewedPosts[caller] = make(map[string]bool)
		}
		for _, id := range args.PostIDs {
			s.viewedPosts[caller][id] = true
		}
		s.mu.Unlock()
		respondJSON(w, nil)

	// Job board operations.

	case "getJobPostings":
		s.mu.RLock()
		jobs := make([]models.JobPost, 0, len(s.jobs))
		for _, j := range s.jobs {
			jobs = append(jobs, *j)
		}
		s.mu.RUnlock()
		respondJSON(w, jobs)

	case "postJob":
		args, ok := decodeArgs[models.JobPost](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		args.ID = uuid.New().String()
		args.Poster = caller
		args.Timestamp = time.Now()
		args.Applications = nil
		job := args
		s.jobs = append(s.jobs, &job)
		s.mu.Unlock()
		respondJSON(w, nil)

	case "deleteJobPosting":
		args, ok := decodeArgs[struct {
			JobID string `json:"job_id"`
		}](w, body)
		if !ok {
			return
		}
		admin := s.isAdmin(caller)
		s.mu.Lock()
		for i, j := range s.jobs {
			if j.ID == args.JobID {
				if j.Poster != caller && !admin {
					s.mu.Unlock()
					respondError(w, "unauthorized", "only the poster or an admin may delete a job", http.StatusForbidden)
					return
				}
				s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		respondJSON(w, nil)

	case "applyForJob":
		args, ok := decodeArgs[struct {
			JobID       string `json:"job_id"`
			CoverLetter string `json:"cover_letter"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		job := s.findJob(args.JobID)
		if job == nil {
			s.mu.Unlock()
			respondError(w, "not_found", "job not found", http.StatusNotFound)
			return
		}
		for _, app := range job.Applications {
			if app.Applicant == caller {
				s.mu.Unlock()
				respondError(w, "internal", "an application for this job already exists", http.StatusConflict)
				return
			}
		}
		var profile models.CoachProfile
		if p := s.profiles[caller]; p != nil {
			profile = *p
		}
		job.Applications = append(job.Applications, models.Application{
			Applicant:   caller,
			CoverLetter: args.CoverLetter,
			Timestamp:   time.Now(),
			Profile:     profile,
		})
		s.mu.Unlock()
		respondJSON(w, nil)

	case "getJobApplications":
		args, ok := decodeArgs[struct {
			JobID string `json:"job_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		var apps []models.Application
		if job := s.findJob(args.JobID); job != nil {
			apps = append(apps, job.Applications...)
		}
		s.mu.RUnlock()
		respondJSON(w, apps)

	case "getMyApplications":
		s.mu.RLock()
		var mine []models.JobApplication
		for _, job := range s.jobs {
			for _, app := range job.Applications {
				if app.Applicant == caller {
					mine = append(mine, models.JobApplication{JobID: job.ID, Application: app})
				}
			}
		}
		s.mu.RUnlock()
		respondJSON(w, mine)

	// Follow graph operations.

	case "followCoach":
		args, ok := decodeArgs[struct {
			CoachID models.Principal `json:"coach_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		if s.follows[caller] == nil {
			s.follows[caller] = make(map[models.Principal]bool)
		}
		s.follows[caller][args.CoachID] = true
		s.mu.Unlock()
		respondJSON(w, nil)

	case "unfollowCoach":
		args, ok := decodeArgs[struct {
			CoachID models.Principal `json:"coach_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		delete(s.follows[caller], args.CoachID)
		s.mu.Unlock()
		respondJSON(w, nil)

	case "isFollowing":
		args, ok := decodeArgs[struct {
			CallerID models.Principal `json:"caller_id"`
			CoachID  models.Principal `json:"coach_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		following := s.follows[args.CallerID][args.CoachID]
		s.mu.RUnlock()
		respondJSON(w, following)

	case "getFollowers":
		args, ok := decodeArgs[struct {
			CoachID models.Principal `json:"coach_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		var followers []models.Principal
		for follower, followees := range s.follows {
			if followees[args.CoachID] {
				followers = append(followers, follower)
			}
		}
		s.mu.RUnlock()
		respondJSON(w, followers)

	case "getFollowing":
		args, ok := decodeArgs[struct {
			CoachID models.Principal `json:"coach_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		var following []models.Principal
		for followee := range s.follows[args.CoachID] {
			following = append(following, followee)
		}
		s.mu.RUnlock()
		respondJSON(w, following)

	case "getFollowersCount":
		args, ok := decodeArgs[struct {
			CoachID models.Principal `json:"coach_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		count := 0
		for _, followees := range s.follows {
			if followees[args.CoachID] {
				count++
			}
		}
		s.mu.RUnlock()
		respondJSON(w, count)

	case "getFollowingCount":
		args, ok := decodeArgs[struct {
			CoachID models.Principal `json:"coach_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		count := len(s.follows[args.CoachID])
		s.mu.RUnlock()
		respondJSON(w, count)

	case "getFollowerDetails":
		args, ok := decodeArgs[struct {
			FollowerID models.Principal `json:"follower_id"`
			CoachID    models.Principal `json:"coach_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		detail := models.FollowerDetail{
			IsFollowing: s.follows[args.FollowerID][args.CoachID],
		}
		for follower, followees := range s.follows {
			if followees[args.CoachID] {
				entry := models.ProfileEntry{User: follower}
				if p := s.profiles[follower]; p != nil {
					entry.Profile = *p
				}
				detail.Followers = append(detail.Followers, entry)
			}
		}
		for followee := range s.follows[args.CoachID] {
			entry := models.ProfileEntry{User: followee}
			if p := s.profiles[followee]; p != nil {
				entry.Profile = *p
			}
			detail.Following = append(detail.Following, entry)
		}
		s.mu.RUnlock()
		respondJSON(w, detail)

	case "connectWithCoach":
		args, ok := decodeArgs[struct {
			CoachID models.Principal `json:"coach_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		if s.connections[caller] == nil {
			s.connections[caller] = make(map[models.Principal]bool)
		}
		s.connections[caller][args.CoachID] = true
		s.mu.Unlock()
		respondJSON(w, nil)

	case "getMyConnections":
		s.mu.RLock()
		var connections []models.Principal
		for c := range s.connections[caller] {
			connections = append(connections, c)
		}
		s.mu.RUnlock()
		respondJSON(w, connections)

	case "getConnections":
		args, ok := decodeArgs[struct {
			UserID models.Principal `json:"user_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		var connections []models.Principal
		for c := range s.connections[args.UserID] {
			connections = append(connections, c)
		}
		s.mu.RUnlock()
		respondJSON(w, connections)

	// Messaging operations.

	case "getDirectMessages":
		args, ok := decodeArgs[struct {
			OtherUser models.Principal `json:"other_user"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		var conversation []models.DirectMessage
		for _, m := range s.directMessages {
			if (m.Sender == caller && m.Receiver == args.OtherUser) ||
				(m.Sender == args.OtherUser && m.Receiver == caller) {
				conversation = append(conversation, m)
			}
		}
		s.mu.RUnlock()
		respondJSON(w, conversation)

	case "sendDirectMessage":
		args, ok := decodeArgs[struct {
			Receiver models.Principal `json:"receiver"`
			Content  string           `json:"content"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		s.directMessages = append(s.directMessages, models.DirectMessage{
			Sender:    caller,
			Receiver:  args.Receiver,
			Content:   args.Content,
			Timestamp: time.Now(),
		})
		s.mu.Unlock()
		s.hub.sendToUser(args.Receiver, pushEvent{
			Type:   "invalidate",
			Prefix: "directMessages/" + caller.String(),
		})
		respondJSON(w, nil)

	case "getGroupMessages":
		args, ok := decodeArgs[struct {
			GroupID string `json:"group_id"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.RLock()
		var conversation []models.GroupMessage
		for _, m := range s.groupMessages {
			if m.GroupID == args.GroupID {
				conversation = append(conversation, m)
			}
		}
		s.mu.RUnlock()
		respondJSON(w, conversation)

	case "sendGroupMessage":
		args, ok := decodeArgs[struct {
			GroupID string `json:"group_id"`
			Content string `json:"content"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		s.groupMessages = append(s.groupMessages, models.GroupMessage{
			Sender:    caller,
			GroupID:   args.GroupID,
			Content:   args.Content,
			Timestamp: time.Now(),
		})
		s.mu.Unlock()
		s.hub.broadcast(pushEvent{
			Type:   "invalidate",
			Prefix: "groupMessages/" + args.GroupID,
		})
		respondJSON(w, nil)

	// Admin operations.

	case "isCallerAdmin":
		respondJSON(w, s.isAdmin(caller))

	case "getCallerUserRole":
		s.mu.RLock()
		role, ok := s.roles[caller]
		s.mu.RUnlock()
		if !ok {
			role = models.RoleGuest
		}
		respondJSON(w, role)

	case "assignCallerUserRole":
		if !s.isAdmin(caller) {
			respondError(w, "unauthorized", "admin role required", http.StatusForbidden)
			return
		}
		args, ok := decodeArgs[struct {
			User models.Principal `json:"user"`
			Role models.UserRole  `json:"role"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		s.roles[args.User] = args.Role
		s.mu.Unlock()
		respondJSON(w, nil)

	case "deleteUser":
		if !s.isAdmin(caller) {
			respondError(w, "unauthorized", "admin role required", http.StatusForbidden)
			return
		}
		args, ok := decodeArgs[struct {
			Target models.Principal `json:"target"`
		}](w, body)
		if !ok {
			return
		}
		s.mu.Lock()
		delete(s.profiles, args.Target)
		delete(s.roles, args.Target)
		delete(s.follows, args.Target)
		delete(s.connections, args.Target)
		for _, followees := range s.follows {
			delete(followees, args.Target)
		}
		var posts []*models.Post
		for _, p := range s.posts {
			if p.Author == args.Target {
				continue
			}
			var comments []models.Comment
			for _, c := range p.Comments {
				if c.Author != args.Target {
					comments = append(comments, c)
				}
			}
			p.Comments = comments
			posts = append(posts, p)
		}
		s.posts = posts
		var jobs []*models.JobPost
		for _, j := range s.jobs {
			if j.Poster != args.Target {
				jobs = append(jobs, j)
			}
		}
		s.jobs = jobs
		s.mu.Unlock()
		respondJSON(w, nil)

	case "submitReport":
		s.mu.Lock()
		for user, role := range s.roles {
			if role == models.RoleAdmin {
				s.bannerPending[user] = true
			}
		}
		s.mu.Unlock()
		s.hub.broadcast(pushEvent{Type: "invalidate", Prefix: "hasNewBannerNotification"})
		respondJSON(w, nil)

	case "hasNewBannerNotification":
		s.mu.RLock()
		pending := s.bannerPending[caller]
		s.mu.RUnlock()
		respondJSON(w, pending)

	case "dismissBannerNotification":
		s.mu.Lock()
		delete(s.bannerPending, caller)
		s.mu.Unlock()
		respondJSON(w, nil)

	default:
		respondError(w, "not_found", "unknown method "+method, http.StatusNotFound)
	}
}
