// Package signuptest provides an in-process fake of the remote signup
// endpoint for tests. It answers with the same JSON shapes as the reference
// backend: 201 with a user, 400 with per-field errors, or whatever a test
// forces with RespondWith.
package signuptest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const DefaultPath = "/api/auth/signup"

// Request is a signup request as received by the fake.
type Request struct {
	RequestID       string `json:"-"`
	ContentType     string `json:"-"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// User is the user record returned on success.
type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	DateJoined string `json:"date_joined"`
}

type forced struct {
	status int
	body   interface{}
	raw    *string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]User
	emails   map[string]bool
	nextID   int64
	requests []Request
	forced   *forced
	gate     chan struct{}
	arrived  chan struct{}
}

// NewServer starts a fake signup service listening on DefaultPath.
func NewServer() *Server {
	s := &Server{
		users:  make(map[string]User),
		emails: make(map[string]bool),
		nextID: 1,
	}

	r := chi.NewRouter()
	r.Post(DefaultPath, s.handleSignup)
	s.Server = httptest.NewServer(r)
	return s
}

// AddUser registers an existing account so duplicates are rejected.
func (s *Server) AddUser(username, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = User{ID: s.nextID, Username: username, Email: email}
	s.emails[strings.ToLower(email)] = true
	s.nextID++
}

// RespondWith makes every following request answer with status and a JSON body.
func (s *Server) RespondWith(status int, body interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced = &forced{status: status, body: body}
}

// RespondRaw makes every following request answer with status and a plain text body.
func (s *Server) RespondRaw(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced = &forced{status: status, raw: &body}
}

// Hold blocks requests until release is called. arrived receives once per
// request that reached the handler.
func (s *Server) Hold() (arrived <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
	s.arrived = make(chan struct{}, 16)
	gate := s.gate
	var once sync.Once
	return s.arrived, func() { once.Do(func() { close(gate) }) }
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req Request
	decodeErr := render.DecodeJSON(r.Body, &req)
	req.RequestID = r.Header.Get("X-Request-ID")
	req.ContentType = r.Header.Get("Content-Type")

	s.mu.Lock()
	s.requests = append(s.requests, req)
	gate, arrived, f := s.gate, s.arrived, s.forced
	s.mu.Unlock()

	if gate != nil {
		select {
		case arrived <- struct{}{}:
		case <-gate:
		case <-r.Context().Done():
			return
		}
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	if f != nil {
		if f.raw != nil {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(*f.raw))
			return
		}
		render.Status(r, f.status)
		render.JSON(w, r, f.body)
		return
	}

	if decodeErr != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]interface{}{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if errs := s.check(req); len(errs) > 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]interface{}{
			"success": false,
			"message": "Validation failed",
			"errors":  errs,
		})
		return
	}

	user := User{
		ID:         s.nextID,
		Username:   req.Username,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		DateJoined: time.Now().UTC().Format(time.RFC3339),
	}
	s.nextID++
	s.users[user.Username] = user
	s.emails[strings.ToLower(user.Email)] = true

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"message": "User created successfully",
		"user":    user,
	})
}

// check applies the server-side rules. Callers hold s.mu.
func (s *Server) check(req Request) map[string][]string {
	errs := map[string][]string{}
	blank := "This field may not be blank."

	required := map[string]string{
		"username":         req.Username,
		"email":            req.Email,
		"first_name":       req.FirstName,
		"last_name":        req.LastName,
		"password":         req.Password,
		"password_confirm": req.PasswordConfirm,
	}
	for field, v := range required {
		if strings.TrimSpace(v) == "" {
			errs[field] = append(errs[field], blank)
		}
	}

	if _, ok := s.users[req.Username]; ok && req.Username != "" {
		errs["username"] = append(errs["username"], "A user with that username already exists.")
	}
	if s.emails[strings.ToLower(req.Email)] && req.Email != "" {
		errs["email"] = append(errs["email"], "user with this email already exists.")
	}
	if req.Password != req.PasswordConfirm {
		errs["password_confirm"] = append(errs["password_confirm"], "Passwords do not match.")
	}
	return errs
}
