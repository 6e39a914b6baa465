package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"revista/backend/internal/config"
	"revista/backend/internal/infrastructure/ratelimit"
	authusecase "revista/backend/internal/usecase/auth"
	engagementusecase "revista/backend/internal/usecase/engagement"
	issueusecase "revista/backend/internal/usecase/issue"
	publisherusecase "revista/backend/internal/usecase/publisher"
	titleusecase "revista/backend/internal/usecase/title"
	userusecase "revista/backend/internal/usecase/user"
)

// Services groups the use cases the HTTP layer dispatches to.
type Services struct {
	Auth       *authusecase.Service
	Users      *userusecase.Service
	Publishers *publisherusecase.Service
	Titles     *titleusecase.Service
	Issues     *issueusecase.Service
	Engagement *engagementusecase.Service
}

// Options carries the optional collaborators of the server.
type Options struct {
	Logger  *logrus.Logger
	Health  *HealthChecker
	Metrics *Metrics
	// RateLimitStore backs the limiters. Nil selects an in-process store.
	RateLimitStore ratelimit.Store
}

type limiters struct {
	auth    *ratelimit.Limiter
	api     *ratelimit.Limiter
	create  *ratelimit.Limiter
	search  *ratelimit.Limiter
	content *ratelimit.Limiter
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	logger     *logrus.Logger
	production bool
	trustProxy bool
	now        func() time.Time

	auth       *authusecase.Service
	users      *userusecase.Service
	publishers *publisherusecase.Service
	titles     *titleusecase.Service
	issues     *issueusecase.Service
	engagement *engagementusecase.Service

	health   *HealthChecker
	metrics  *Metrics
	limiters limiters
	addr     string
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, svc Services, opts Options) *Server {
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	health := opts.Health
	if health == nil {
		health = NewHealthChecker(nil, nil)
	}

	router := mux.NewRouter()
	srv := &Server{
		router:     router,
		logger:     logger,
		production: cfg.IsProduction(),
		trustProxy: cfg.TrustProxy,
		now:        time.Now,
		auth:       svc.Auth,
		users:      svc.Users,
		publishers: svc.Publishers,
		titles:     svc.Titles,
		issues:     svc.Issues,
		engagement: svc.Engagement,
		health:     health,
		metrics:    opts.Metrics,
		addr:       addr,
	}
	if cfg.RateLimit.Enabled {
		srv.limiters = newLimiters(cfg.RateLimit, opts.RateLimitStore)
	}

	srv.registerRoutes()

	var handler http.Handler = router
	handler = srv.withRecovery(handler)
	handler = withCORS(cfg.AllowedOrigins)(handler)
	handler = withRequestLogging(logger, handler)

	srv.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSec) * time.Second,
	}
	return srv
}

func newLimiters(cfg config.RateLimitConfig, store ratelimit.Store) limiters {
	if store == nil {
		store = ratelimit.NewMemoryStore()
	}
	rule := func(w config.Window) ratelimit.Rule {
		return ratelimit.Rule{Max: w.Max, Period: w.Period}
	}
	return limiters{
		auth:    ratelimit.New("auth", rule(cfg.Auth), store),
		api:     ratelimit.New("api", rule(cfg.API), store),
		create:  ratelimit.New("create", rule(cfg.Create), store),
		search:  ratelimit.New("search", rule(cfg.Search), store),
		content: ratelimit.New("content", rule(cfg.Content), store),
	}
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
