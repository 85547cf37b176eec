// Package devapi is an in-memory implementation of the FormWave REST API for
// local development and client tests.
package devapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lychee-technology/formwave"
	"github.com/lychee-technology/formwave/internal"
)

// Options tunes a Server. Zero values select the defaults.
type Options struct {
	Now          func() time.Time
	PasswordCost int
}

type account struct {
	user         formwave.User
	passwordHash []byte
}

// Server holds users, sessions, forms and responses in memory.
type Server struct {
	mu sync.Mutex

	accounts map[string]*account // by lower-cased email
	sessions map[string]string   // token -> user id

	forms     map[string]*formwave.Form
	formOwner map[string]string
	formOrder []string

	responses     map[string]*formwave.FormResponse
	responseOrder []string

	ids  internal.IDGenerator
	now  func() time.Time
	cost int

	router chi.Router
}

// NewServer creates an empty backend with its routes mounted under /api.
func NewServer(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}
	s := &Server{
		accounts:  make(map[string]*account),
		sessions:  make(map[string]string),
		forms:     make(map[string]*formwave.Form),
		formOwner: make(map[string]string),
		responses: make(map[string]*formwave.FormResponse),
		ids:       internal.UUIDGenerator{},
		now:       opts.Now,
		cost:      opts.PasswordCost,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/reset-password/request", s.handleResetRequest)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/reset-password", s.handleResetPassword)
			r.Put("/auth/profile", s.handleUpdateProfile)

			r.Route("/forms", func(r chi.Router) {
				r.Get("/", s.handleListForms)
				r.Post("/", s.handleCreateForm)
				r.Get("/{id}", s.handleGetForm)
				r.Put("/{id}", s.handleUpdateForm)
				r.Delete("/{id}", s.handleDeleteForm)
				r.Get("/{id}/responses", s.handleListResponses)
				r.Post("/{id}/responses", s.handleSubmitResponse)
			})

			r.Get("/responses/{id}", s.handleGetResponse)
			r.Delete("/responses/{id}", s.handleDeleteResponse)
		})
	})
	return r
}

type ctxKey int

const userIDKey ctxKey = iota

func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// requireSession resolves the bearer token to a user or answers 401.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		s.mu.Lock()
		uid, found := s.sessions[token]
		s.mu.Unlock()
		if !found {
			writeError(w, http.StatusUnauthorized, "session expired")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.S().Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"durationMs", time.Since(start).Milliseconds())
	})
}

// newSessionLocked issues a token for uid. mu must be held.
func (s *Server) newSessionLocked(uid string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	s.sessions[token] = uid
	return token, nil
}

func newResponseID() string {
	return uuid.NewString()
}

type apiResponse struct {
	Token   string         `json:"token,omitempty"`
	User    *formwave.User `json:"user,omitempty"`
	Success bool           `json:"success,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.S().Warnw("write response failed", "error", err)
	}
}

// writeData wraps data in the {"data": ...} envelope.
func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, struct {
		Data any `json:"data"`
	}{data})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, apiResponse{Error: message})
}

func readJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
