package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/oauthkit/pkg/logger"
	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

const defaultHealthTimeout = 5 * time.Second

// Server exposes login and callback endpoints for a set of OAuth clients.
// Clients must be built with oauth.WithStateStore: they are shared by all
// requests, so the state cannot live on the client itself.
type Server struct {
	clients       map[string]*oauth.Client
	checks        Checks
	logger        *slog.Logger
	healthTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and error logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCheck registers a readiness check.
func WithCheck(name string, fn CheckFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.checks[name] = fn
		}
	}
}

// WithHealthTimeout bounds the total time of the readiness checks.
func WithHealthTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.healthTimeout = d
		}
	}
}

// New creates a Server for clients keyed by provider name.
func New(clients map[string]*oauth.Client, opts ...Option) *Server {
	s := &Server{
		clients:       clients,
		checks:        Checks{},
		logger:        logger.NewNope(),
		healthTimeout: defaultHealthTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes:
//
//	GET /auth/{provider}           redirect to the provider
//	GET /auth/{provider}/callback  exchange the code and return the user
//	GET /health/live
//	GET /health/ready
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(s.logger),
		middleware.Recoverer,
	)

	r.Get("/health/live", s.live)
	r.Get("/health/ready", s.ready)

	r.Get("/auth/{provider}", s.login)
	r.Get("/auth/{provider}/callback", s.callback)
	return r
}

// RequestIDExtractor adds the chi request ID to every log record written with a request context.
func RequestIDExtractor() logger.ContextExtractor {
	return logger.FromContext(middleware.RequestIDKey, "request_id")
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
