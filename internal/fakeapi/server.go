// Package fakeapi is an in-memory stand-in for the coursework service. Tests
// serve its handler with httptest and point the repositories at it.
package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"coursework-roadmap/internal/models"
	"coursework-roadmap/internal/roadmap"
)

// MaxUploadSize is the largest accepted specification document
const MaxUploadSize = 20 * 1024 * 1024

// TokenTTL is the lifetime of issued tokens
const TokenTTL = 7 * 24 * time.Hour

type account struct {
	user     models.User
	password string
}

type coursework struct {
	owner  string
	detail models.CourseworkDetail
}

type failure struct {
	status int
	detail string
}

// Server holds the fake service state
type Server struct {
	mu          sync.Mutex
	secret      []byte
	now         func() time.Time
	accounts    map[string]*account // by email
	users       map[string]*account // by id
	revoked     map[string]bool     // by jti
	courseworks map[string]*coursework
	sessions    map[string][]string // session id to asked questions
	decomposed  *models.DecompositionResponse
	answer      *models.ChatResponse
	images      map[string][]byte // document id + "/" + filename
	failures    map[string][]failure
	calls       map[string]int
	lastBodies  map[string][]byte
}

// New creates an empty fake service
func New() *Server {
	return &Server{
		secret:      []byte(uuid.NewString()),
		now:         time.Now,
		accounts:    make(map[string]*account),
		users:       make(map[string]*account),
		revoked:     make(map[string]bool),
		courseworks: make(map[string]*coursework),
		sessions:    make(map[string][]string),
		images:      make(map[string][]byte),
		failures:    make(map[string][]failure),
		calls:       make(map[string]int),
		lastBodies:  make(map[string][]byte),
	}
}

// Handler returns the router serving the fake API
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.With(s.requireUser).Get("/me", s.me)
		r.With(s.requireUser).Post("/logout", s.logout)
	})

	r.Route("/api/courseworks", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/", s.listCourseworks)
		r.Post("/", s.createCoursework)
		r.Get("/{id}", s.getCoursework)
		r.Put("/{id}", s.updateCoursework)
		r.Delete("/{id}", s.deleteCoursework)
	})

	r.Route("/api/chat", func(r chi.Router) {
		r.Use(s.optionalUser)
		r.Post("/", s.chat)
		r.Delete("/{sessionID}", s.clearChat)
	})

	r.With(s.optionalUser).Post("/api/decompose", s.decompose)
	r.With(s.optionalUser).Get("/api/images/{documentID}/{filename}", s.image)
	return r
}

// AddUser registers an account directly and returns it
func (s *Server) AddUser(email, password, name string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, password, name).user
}

func (s *Server) addUserLocked(email, password, name string) *account {
	acct := &account{
		user: models.User{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      name,
			CreatedAt: s.now().UTC(),
		},
		password: password,
	}
	s.accounts[email] = acct
	s.users[acct.user.ID] = acct
	return acct
}

// IssueToken signs a token for userID that expires after ttl
func (s *Server) IssueToken(userID string, ttl time.Duration) string {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("fakeapi: sign token: %v", err))
	}
	return token
}

// SeedCoursework stores doc for userID and returns its id
func (s *Server) SeedCoursework(userID string, doc *models.DecompositionResponse) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	id := uuid.NewString()
	s.courseworks[id] = &coursework{
		owner: userID,
		detail: models.CourseworkDetail{
			ID:           id,
			CourseName:   doc.Name(),
			Deadline:     doc.Deadline,
			DeadlineNote: doc.DeadlineNote,
			RoadmapData:  *doc.Clone(),
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	return id
}

// Coursework returns a stored roadmap
func (s *Server) Coursework(id string) (models.CourseworkDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cw, ok := s.courseworks[id]
	if !ok {
		return models.CourseworkDetail{}, false
	}
	detail := cw.detail
	detail.RoadmapData = *cw.detail.RoadmapData.Clone()
	return detail, true
}

// AddSession makes sessionID known to the chat endpoint
func (s *Server) AddSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = nil
}

// History returns the questions asked in a session
func (s *Server) History(sessionID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sessions[sessionID]...)
}

// SetDecomposition sets the document returned by the decompose endpoint
func (s *Server) SetDecomposition(doc *models.DecompositionResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decomposed = doc.Clone()
}

// SetAnswer sets the chat endpoint's reply. Without one it echoes the question.
func (s *Server) SetAnswer(resp models.ChatResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answer = &resp
}

// SetImage stores an extracted image served under documentID
func (s *Server) SetImage(documentID, filename string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[documentID+"/"+filename] = append([]byte(nil), data...)
}

// FailNext makes the next call to method path respond with status and a
// {"detail": detail} body. Repeated calls queue failures in order.
func (s *Server) FailNext(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, detail: detail})
}

// Calls returns how many requests reached method path
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// LastBody returns the body of the most recent request to method path
func (s *Server) LastBody(method, path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBodies[method+" "+path]
}

func (s *Server) summariesFor(userID string) []models.CourseworkSummary {
	summaries := []models.CourseworkSummary{}
	for _, cw := range s.courseworks {
		if cw.owner != userID {
			continue
		}
		d := cw.detail
		stats := roadmap.Summarize(d.RoadmapData.Tasks)
		summaries = append(summaries, models.CourseworkSummary{
			ID:             d.ID,
			CourseName:     d.CourseName,
			Deadline:       d.Deadline,
			DeadlineNote:   d.DeadlineNote,
			CreatedAt:      d.CreatedAt,
			UpdatedAt:      d.UpdatedAt,
			TotalTasks:     stats.Total,
			CompletedTasks: stats.Completed,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries
}
