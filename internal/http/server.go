// Package http is the request gateway: rate-limited one-shot endpoints and
// a stateful websocket channel over the analysis pipeline.  Input
// validation happens here; nothing malformed reaches the pipeline.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"carenova/internal/config"
	"carenova/internal/metrics"
	"carenova/internal/session"
	"carenova/pkg"
)

// Analyzer is the slice of the analysis pipeline the gateway needs.
type Analyzer interface {
	Analyze(ctx context.Context, query string) pkg.AnalysisReport
}

// QuestionGenerator produces follow-up questions; it never fails.
type QuestionGenerator interface {
	Generate(ctx context.Context, symptoms string) []string
}

// Readiness reports whether an upstream collaborator is usable.
type Readiness interface {
	Ready() bool
}

// Server bundles the dependencies required by the HTTP handlers.
type Server struct {
	analyzer  Analyzer
	questions QuestionGenerator
	sessions  *session.Store
	llm       Readiness
	index     Readiness
	cfg       config.APIConfig
	limiter   *ipLimiter
	upgrader  websocket.Upgrader
	log       *slog.Logger
}

// NewServer constructs the gateway.
func NewServer(
	analyzer Analyzer,
	questions QuestionGenerator,
	sessions *session.Store,
	llmReady, indexReady Readiness,
	cfg config.APIConfig,
	log *slog.Logger,
) *Server {
	return &Server{
		analyzer:  analyzer,
		questions: questions,
		sessions:  sessions,
		llm:       llmReady,
		index:     indexReady,
		cfg:       cfg,
		limiter:   newIPLimiter(cfg.RateLimitPerMinute),
		upgrader: websocket.Upgrader{
			// Browser clients connect from the configured origins; CORS
			// policy is enforced in checkOrigin.
			CheckOrigin: checkOrigin(cfg),
		},
		log: log,
	}
}

// Router builds the chi handler tree with the shared middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	if s.cfg.EnableCORS {
		r.Use(corsMiddleware(s.cfg.AllowedOrigins))
	}

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws/chat", s.handleChat)
	r.Get("/", s.handleFrontend)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Use(maxBytes(s.cfg.MaxBodyBytes))
		r.Post("/followup-questions", s.handleFollowupQuestions)
		r.Post("/analyze", s.handleAnalyze)
	})

	return r
}

// handleFrontend serves the static chat page when one is bundled.
func (s *Server) handleFrontend(w http.ResponseWriter, r *http.Request) {
	if s.cfg.StaticDir != "" {
		page := filepath.Join(s.cfg.StaticDir, "index.html")
		if _, err := os.Stat(page); err == nil {
			http.ServeFile(w, r, page)
			return
		}
	}
	writeError(w, http.StatusNotFound, "frontend not bundled")
}
