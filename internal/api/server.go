package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vishwajeetsingh04/interview-engine/internal/config"
	"github.com/vishwajeetsingh04/interview-engine/internal/notify"
	"github.com/vishwajeetsingh04/interview-engine/internal/questions"
	"github.com/vishwajeetsingh04/interview-engine/internal/session"
	"github.com/vishwajeetsingh04/interview-engine/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	engineCfg      config.EngineConfig
	router         *chi.Mux
	registry       *session.Registry
	repo           storage.Repository
	questionSets   *questions.Loader
	hub            *notify.Hub
	redis          *notify.RedisPublisher
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	engineCfg config.EngineConfig,
	registry *session.Registry,
	repo storage.Repository,
	loader *questions.Loader,
	hub *notify.Hub,
	redis *notify.RedisPublisher,
) *Server {
	s := &Server{
		config:         cfg,
		engineCfg:      engineCfg,
		registry:       registry,
		repo:           repo,
		questionSets:   loader,
		hub:            hub,
		redis:          redis,
		authMiddleware: NewAuthMiddleware(repo),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// Websocket live feed (observer joins with a session id)
	r.Get("/ws/sessions/{id}", s.handleSessionStream)

	// API v1 routes (protected by authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware.Authenticate)

		// Sessions
		r.Route("/sessions", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("sessions:read")).Get("/", s.handleListSessions)
			r.With(s.authMiddleware.RequirePermission("sessions:write")).Post("/", s.handleStartSession)

			r.Route("/{id}", func(r chi.Router) {
				r.With(s.authMiddleware.RequirePermission("sessions:read")).Get("/", s.handleGetSession)
				r.With(s.authMiddleware.RequirePermission("sessions:write")).Post("/measurements", s.handleIngest)
				r.With(s.authMiddleware.RequirePermission("sessions:write")).Post("/pause", s.handlePauseSession)
				r.With(s.authMiddleware.RequirePermission("sessions:write")).Post("/resume", s.handleResumeSession)
				r.With(s.authMiddleware.RequirePermission("sessions:write")).Post("/advance", s.handleAdvanceQuestion)
				r.With(s.authMiddleware.RequirePermission("sessions:write")).Post("/end", s.handleEndSession)
			})
		})

		// Question sets
		r.Route("/question-sets", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("questions:read")).Get("/", s.handleListQuestionSets)
			r.With(s.authMiddleware.RequirePermission("questions:read")).Get("/{id}", s.handleGetQuestionSet)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
