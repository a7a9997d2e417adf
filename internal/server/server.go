// Package server provides the HTTP REST API for resume-studio.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-studio/internal/config"
	"github.com/jonathan/resume-studio/internal/db"
	"github.com/jonathan/resume-studio/internal/server/middleware"
	"github.com/jonathan/resume-studio/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	db            *db.DB
	rateLimiter   *ratelimit.Limiter
	jwtService    *JWTService
	authHandler   *AuthHandler
	resumes       *ResumeService
	validator     *validator.Validate
	publicBaseURL string
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	// PublicBaseURL prefixes shareable view links. Derived from the request when empty.
	PublicBaseURL string

	// Nil values are loaded from the environment.
	JWT       *config.JWTConfig
	Password  *config.PasswordConfig
	RateLimit *ratelimit.Config
}

// New connects to the database and creates a new server instance
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s, err := NewWithStore(cfg, database)
	if err != nil {
		database.Close()
		return nil, err
	}
	s.db = database
	return s, nil
}

// NewWithStore creates a server backed by store
func NewWithStore(cfg Config, store Store) (*Server, error) {
	passwordConfig := cfg.Password
	if passwordConfig == nil {
		pc, err := config.NewPasswordConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create password config: %w", err)
		}
		passwordConfig = pc
	}

	jwtConfig := cfg.JWT
	if jwtConfig == nil {
		jc, err := config.NewJWTConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
		jwtConfig = jc
	}

	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}

	s := &Server{
		rateLimiter:   ratelimit.NewLimiter(rlConfig),
		jwtService:    NewJWTService(jwtConfig),
		resumes:       NewResumeService(store),
		validator:     newRequestValidator(),
		publicBaseURL: cfg.PublicBaseURL,
	}
	s.authHandler = NewAuthHandler(NewUserService(store, passwordConfig), s.jwtService)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// routes registers every endpoint
func (s *Server) routes() *http.ServeMux {
	auth := middleware.RequireAuth(s.jwtService.AsTokenValidator())
	optional := middleware.OptionalAuth(s.jwtService.AsTokenValidator())
	private := func(h http.HandlerFunc) http.Handler { return auth(h) }
	public := func(h http.HandlerFunc) http.Handler { return optional(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	// Account
	mux.Handle("GET /me", private(s.authHandler.Profile))
	mux.Handle("PUT /me/password", private(s.authHandler.ChangePassword))
	mux.Handle("DELETE /me", private(s.authHandler.DeleteAccount))

	// Resumes
	mux.Handle("GET /resumes", private(s.handleListResumes))
	mux.Handle("POST /resumes", private(s.handleCreateResume))
	mux.Handle("GET /resumes/{id}", public(s.handleGetResume))
	mux.Handle("PUT /resumes/{id}", private(s.handleReplaceResume))
	mux.Handle("PATCH /resumes/{id}/status", private(s.handleUpdateResumeStatus))
	mux.Handle("DELETE /resumes/{id}", private(s.handleDeleteResume))
	mux.Handle("POST /resumes/{id}/favorite", private(s.handleToggleFavorite))
	mux.Handle("GET /resumes/{id}/link", public(s.handleViewLink))
	mux.Handle("GET /resumes/{id}/view", public(s.handleViewResume))
	mux.Handle("GET /resumes/{id}/download", public(s.handleDownloadResume))

	// Discovery
	mux.Handle("GET /public-resumes", public(s.handleListPublicResumes))
	mux.Handle("GET /favorites", private(s.handleListFavorites))
	mux.Handle("GET /user/stats", private(s.handleUserStats))
	return mux
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until interrupted
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-stop:
	case err := <-errCh:
		if err != nil {
			s.Close()
			return fmt.Errorf("server error: %w", err)
		}
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close releases the rate limiter and database connection
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extractClientID uses the IP address from RemoteAddr.
// X-Forwarded-For is not trusted since no proxy list is configured.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	log.Printf("[rate-limit] exceeded: limit=%d reset=%s", info.Limit, info.ResetTime.Format(time.RFC3339))
	writeJSON(w, http.StatusTooManyRequests, response)
}
