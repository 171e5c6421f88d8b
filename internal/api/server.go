// Package api exposes the chatbot engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"

	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/observability"
	"govsupport-chatbot/internal/common/validation"
	"govsupport-chatbot/internal/eligibility"
	"govsupport-chatbot/internal/engine/conversation"
	"govsupport-chatbot/internal/engine/questions"
	"govsupport-chatbot/internal/models"
	"govsupport-chatbot/internal/repository"
	"govsupport-chatbot/internal/search"
)

// ChatEngine runs one conversation turn.
type ChatEngine interface {
	HandleTurn(ctx context.Context, sessionID, message string) (*conversation.TurnResult, error)
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*repository.StoredProfile, error)
	Upsert(ctx context.Context, userID string, update models.UserProfile) (*repository.StoredProfile, error)
	Delete(ctx context.Context, userID string) error
}

// PolicyCatalog is the stored policy catalogue.
type PolicyCatalog interface {
	List(ctx context.Context, category, region string, limit int) ([]models.Policy, error)
	GetByID(ctx context.Context, id string) (*models.Policy, error)
	Save(ctx context.Context, p models.Policy) error
}

// PolicyIndexer makes a saved policy searchable.
type PolicyIndexer interface {
	Index(ctx context.Context, p models.Policy) error
}

// SessionRemover drops a conversation session.
type SessionRemover interface {
	Delete(ctx context.Context, id string) error
}

// PolicySearch queries the policy index.
type PolicySearch interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Deps are the collaborators behind the routes. Profiles, Policies,
// Sessions and Searcher may be nil; their routes then answer 503.
// A nil Indexer leaves written policies out of the search index.
type Deps struct {
	Chat        ChatEngine
	Sessions    SessionRemover
	Eligibility *eligibility.Checker
	Profiles    ProfileStore
	Policies    PolicyCatalog
	Indexer     PolicyIndexer
	Searcher    PolicySearch
	Selector    *questions.Selector
	Validator   *validation.Validator
	Checks      map[string]ReadinessCheck
	Obs         *observability.Observability
	Logger      logger.Logger
}

type Server struct {
	deps    Deps
	limiter *RateLimiter
	logger  logger.Logger
	mux     *http.ServeMux
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	if deps.Selector == nil {
		deps.Selector = questions.NewDefaultSelector()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	s := &Server{
		deps:    deps,
		limiter: NewRateLimiter(cfg.RateLimit),
		logger:  deps.Logger.WithFields(map[string]interface{}{"component": "chat-api"}),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.handle("POST /chat", "chat", s.handleChat)
	s.handle("POST /extract", "extract", s.handleExtract)
	s.handle("POST /question", "question", s.handleQuestion)
	s.handle("POST /match", "match", s.handleMatch)
	s.handle("GET /search", "search", s.handleSearch)
	s.handle("GET /profiles/{userId}", "default", s.handleGetProfile)
	s.handle("PUT /profiles/{userId}", "default", s.handlePutProfile)
	s.handle("DELETE /profiles/{userId}", "default", s.handleDeleteProfile)
	s.handle("DELETE /sessions/{sessionId}", "chat", s.handleDeleteSession)
	s.handle("GET /policies", "search", s.handleListPolicies)
	s.handle("GET /policies/{id}", "search", s.handleGetPolicy)
	s.handle("POST /policies", "default", s.handleCreatePolicy)
	s.handle("PUT /policies/{id}", "default", s.handleUpdatePolicy)

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) handle(pattern, endpoint string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.limiter.Middleware(endpoint, s.instrument(pattern, h)))
}

// instrument wraps a route in a span and an access log line.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := s.deps.Obs.StartSpan(r.Context(), route,
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		s.logger.Info("request handled", map[string]interface{}{
			"route":      route,
			"status":     rec.status,
			"durationMs": time.Since(start).Milliseconds(),
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// RunCleanup drops idle rate limiter buckets until ctx is done.
func (s *Server) RunCleanup(ctx context.Context, every, maxIdle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Cleanup(maxIdle)
		}
	}
}
