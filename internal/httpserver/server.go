package httpserver

import (
	"context"
	"net/http"

	"adboard/backend/internal/config"
	advertusecase "adboard/backend/internal/usecase/advert"
	authusecase "adboard/backend/internal/usecase/auth"
	userusecase "adboard/backend/internal/usecase/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
)

// SessionProvider scopes storage access to a single request.
type SessionProvider interface {
	Session(ctx context.Context) (context.Context, func(), error)
}

// Dependencies are the services the HTTP layer dispatches to.
type Dependencies struct {
	Auth     *authusecase.Service
	Users    *userusecase.Service
	Adverts  *advertusecase.Service
	Sessions SessionProvider
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer    *http.Server
	router        *chi.Mux
	authService   *authusecase.Service
	userService   *userusecase.Service
	advertService *advertusecase.Service
	sessions      SessionProvider
	registry      *prometheus.Registry
	metrics       *Metrics
	validate      *validator.Validate
	addr          string
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, deps Dependencies) *Server {
	registry := newRegistry()
	s := &Server{
		router:        chi.NewRouter(),
		authService:   deps.Auth,
		userService:   deps.Users,
		advertService: deps.Adverts,
		sessions:      deps.Sessions,
		registry:      registry,
		metrics:       NewMetrics(registry),
		validate:      newValidator(),
		addr:          cfg.Addr(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.observe)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", TokenHeader},
		MaxAge:         300,
	}))
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
