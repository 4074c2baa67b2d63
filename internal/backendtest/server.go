// Package backendtest hosts an in-process fake of the coaching platform
// backend: the full RPC surface over in-memory state, session token issuing,
// blob hosting, and the invalidation push channel. Tests drive the client
// stack against it without a network.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 24 * time.Hour

// Server is the fake backend. All exported mutators are safe for concurrent
// use.
type Server struct {
	jwtSecret string

	mu             sync.RWMutex
	profiles       map[models.Principal]*models.CoachProfile
	roles          map[models.Principal]models.UserRole
	posts          []*models.Post
	jobs           []*models.JobPost
	directMessages []models.DirectMessage
	groupMessages  []models.GroupMessage
	follows        map[models.Principal]map[models.Principal]bool
	connections    map[models.Principal]map[models.Principal]bool
	bannerPending  map[models.Principal]bool
	viewedPosts    map[models.Principal]map[string]bool
	blobs          map[string][]byte

	calls    map[string]int
	failures map[string]int
	latency  map[string]time.Duration

	hub        *hub
	httpServer *httptest.Server
}

// New creates an empty fake backend.
func New() *Server {
	s := &Server{
		jwtSecret:     uuid.New().String(),
		profiles:      make(map[models.Principal]*models.CoachProfile),
		roles:         make(map[models.Principal]models.UserRole),
		follows:       make(map[models.Principal]map[models.Principal]bool),
		connections:   make(map[models.Principal]map[models.Principal]bool),
		bannerPending: make(map[models.Principal]bool),
		viewedPosts:   make(map[models.Principal]map[string]bool),
		blobs:         make(map[string][]byte),
		calls:         make(map[string]int),
		failures:      make(map[string]int),
		latency:       make(map[string]time.Duration),
	}
	s.hub = newHub()
	return s
}

// Start begins serving and returns the base URL.
func (s *Server) Start() string {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Post("/rpc/{method}", s.handleRPC)
	r.Get("/ws", s.handleWS)
	r.Get("/blobs/{id}", s.handleBlob)

	s.httpServer = httptest.NewServer(r)
	return s.httpServer.URL
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.hub.closeAll()
	s.httpServer.Close()
}

// IssueToken mints a session token for the given user and role, and records
// the role server-side.
func (s *Server) IssueToken(user models.Principal, role models.UserRole) string {
	s.mu.Lock()
	s.roles[user] = role
	s.mu.Unlock()

	claims := jwt.MapClaims{
		"sub":  user.String(),
		"role": string(role),
		"exp":  time.Now().Add(tokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		panic(fmt.Sprintf("backendtest: failed to sign token: %v", err))
	}
	return signed
}

func (s *Server) validateToken(tokenString string) (models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("subject not found in token")
	}
	return models.Principal(sub), nil
}

func (s *Server) callerFromRequest(r *http.Request) models.Principal {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	caller, err := s.validateToken(parts[1])
	if err != nil {
		return ""
	}
	return caller
}

// Failure injection and call accounting.

// FailNext makes the next n invocations of method fail with an internal
// error.
func (s *Server) FailNext(method string, n int) {
	s.mu.Lock()
	s.failures[method] = n
	s.mu.Unlock()
}

// SetLatency delays every invocation of method by d.
func (s *Server) SetLatency(method string, d time.Duration) {
	s.mu.Lock()
	s.latency[method] = d
	s.mu.Unlock()
}

// Calls returns how many times method has been invoked.
func (s *Server) Calls(method string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[method]
}

// ResetCalls clears the per-method call counters.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	s.calls = make(map[string]int)
	s.mu.Unlock()
}

// Seeding helpers.

// SeedProfile installs a profile directly.
func (s *Server) SeedProfile(profile models.CoachProfile) {
	s.mu.Lock()
	p := profile
	s.profiles[profile.UserID] = &p
	if _, ok := s.roles[profile.UserID]; !ok {
		s.roles[profile.UserID] = models.RoleUser
	}
	s.mu.Unlock()
}

// SeedPost installs a post directly and returns its id.
func (s *Server) SeedPost(author models.Principal, content string, timestamp time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	post := &models.Post{
		ID:        uuid.New().String(),
		Author:    author,
		Content:   content,
		Timestamp: timestamp,
	}
	s.posts = append(s.posts, post)
	return post.ID
}

// SeedJob installs a job posting directly and returns its id.
func (s *Server) SeedJob(poster models.Principal, title string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &models.JobPost{
		ID:        uuid.New().String(),
		Poster:    poster,
		Title:     title,
		Timestamp: time.Now(),
	}
	s.jobs = append(s.jobs, job)
	return job.ID
}

// AddBlob hosts raw bytes and returns a blob reference to them.
func (s *Server) AddBlob(data []byte) models.Blob {
	id := uuid.New().String()
	s.mu.Lock()
	s.blobs[id] = data
	s.mu.Unlock()
	return models.Blob{
		ID:  id,
		URL: fmt.Sprintf("%s/blobs/%s", s.httpServer.URL, id),
	}
}

// HTTP plumbing.

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func respondError(w http.ResponseWriter, kind, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorEnvelope{Error: errorBody{Kind: kind, Message: message}})
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	data, ok := s.blobs[id]
	s.mu.RUnlock()
	if !ok {
		respondError(w, "not_found", "blob not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// RemoveBlob drops hosted bytes, simulating direct-URL unavailability while
// the backend can still serve the blob through other paths.
func (s *Server) RemoveBlob(id string) {
	s.mu.Lock()
	delete(s.blobs, id)
	s.mu.Unlock()
}
