// Package devserver is an in-memory fake of the Prava REST API for local
// runs and tests. It implements every endpoint the client consumes over
// seed data and keeps all state in process memory.
package devserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/prava/internal/api"
	"github.com/abhisek/prava/internal/logger"
)

// Options configures a Server.
type Options struct {
	// Secret signs HS256 access tokens.
	Secret string

	// AccessTTL is the access token lifetime. Default: 15m.
	AccessTTL time.Duration

	// BcryptCost is the password hashing cost. Tests use bcrypt.MinCost.
	BcryptCost int

	// AllowedOrigins enables CORS for browser clients.
	AllowedOrigins []string

	// DemoUser/DemoPassword are seeded as a ready-to-use account.
	DemoUser     string
	DemoPassword string

	Log *logger.Logger
}

// DefaultOptions returns settings suitable for local development.
func DefaultOptions() Options {
	return Options{
		Secret:         "prava-dev-secret",
		AccessTTL:      15 * time.Minute,
		BcryptCost:     bcrypt.DefaultCost,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		DemoUser:       "demo",
		DemoPassword:   "demo1234",
	}
}

type account struct {
	api.User
	passwordHash []byte
	progress     map[int]int // lesson id -> percent
	attempts     []attempt
	// served is the size of the last random quiz handed out, the
	// denominator of its score.
	served int
}

type attempt struct {
	lessonID int
	title    string
	score    float64
	at       time.Time
}

// Server holds the fake API state.
type Server struct {
	opts Options
	log  *logger.Logger
	now  func() time.Time

	mu       sync.Mutex
	users    map[string]*account // by username
	byID     map[int]*account
	nextID   int
	refresh  map[string]int // refresh token -> user id
	attempts int

	catalog *catalog
}

// New creates a Server with seeded content and the demo account.
func New(opts Options) (*Server, error) {
	def := DefaultOptions()
	if opts.Secret == "" {
		opts.Secret = def.Secret
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = def.AccessTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = def.BcryptCost
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}

	s := &Server{
		opts:    opts,
		log:     opts.Log,
		now:     time.Now,
		users:   make(map[string]*account),
		byID:    make(map[int]*account),
		nextID:  1,
		refresh: make(map[string]int),
		catalog: seedCatalog(),
	}

	if opts.DemoUser != "" {
		if _, err := s.createUser(opts.DemoUser, opts.DemoUser+"@example.com", opts.DemoPassword); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handler returns the HTTP handler with every route mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, s.requestLogger)
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api", func(ar chi.Router) {
		ar.Post("/auth/login/", s.handleLogin)
		ar.Post("/auth/register/", s.handleRegister)
		ar.Post("/auth/token/refresh/", s.handleRefresh)

		ar.Group(func(pr chi.Router) {
			pr.Use(s.requireAuth)

			pr.Get("/me/", s.handleMe)
			pr.Get("/me/summary/", s.handleSummary)

			pr.Get("/categories/", s.handleCategories)
			pr.Get("/categories/{slug}/", s.handleCategory)
			pr.Get("/categories/{slug}/lessons/", s.handleCategoryLessons)
			pr.Get("/lessons/{id}/", s.handleLesson)

			pr.Post("/progress/", s.handleProgress)

			pr.Post("/quiz-attempts/", s.handleLessonAttempt)
			pr.Get("/quiz/random/", s.handleRandomQuiz)
			pr.Post("/quiz/random/attempts/", s.handleRandomAttempt)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("devserver request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", r.Header.Get("X-Request-ID"),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// fieldErrors accumulates DRF-style per-field validation messages.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return false
	}
	return true
}
