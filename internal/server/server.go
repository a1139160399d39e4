// Package server exposes the renderer over HTTP.
//
// Routes:
//
//	GET  /          service description
//	GET  /health    liveness and engine state, never authenticated
//	POST /generate  HTML in, PDF out
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/auth"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/logger"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "pdf-service"

// Renderer is the render core as seen by the HTTP layer.
type Renderer interface {
	Render(ctx context.Context, req html2pdf.Request) (*html2pdf.Result, error)
	EngineState() html2pdf.EngineState
}

// Server wires the router, middleware and handlers.
type Server struct {
	cfg      *config.Config
	renderer Renderer
	verifier *auth.Verifier
	logger   *zap.Logger
	version  string
	now      func() time.Time
	started  time.Time
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the version reported by / and /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// WithClock overrides the time source used for uptime and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Server around r. cfg must already be validated.
func New(cfg *config.Config, r Renderer, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		renderer: r,
		logger:   zap.NewNop(),
		version:  "dev",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.started = s.now()

	if cfg.AuthEnabled() {
		s.verifier = auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience)
	} else {
		s.logger.Warn("JWT secret not set, authentication disabled (development mode)")
	}

	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()

	r.Use(
		RequestID(),
		logger.GinMiddleware(s.logger),
		logger.Recovery(s.logger),
		SecureHeaders(),
		CORS(s.cfg.CORS.AllowedOrigins),
	)

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.POST("/generate",
		BodyLimit(s.cfg.Limits.MaxBodyBytes),
		Authenticate(s.verifier),
		s.handleGenerate,
	)

	r.NoRoute(handleNotFound)
	return r
}

// NewHTTPServer returns an http.Server for h using the configured address and
// timeouts.
func NewHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout.Std(),
		WriteTimeout:      cfg.Server.WriteTimeout.Std(),
		IdleTimeout:       2 * time.Minute,
	}
}
