package http

import (
	"context"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/qaforge/qaforge/internal/auth"
	"github.com/qaforge/qaforge/internal/config"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer creates the HTTP server and wires routes and middleware.
// Login and the health check are public; everything else requires a
// valid token, and user management additionally requires the admin role.
func NewServer(
	cfg config.ServerConfig,
	logger *logrus.Logger,
	tokens *auth.TokenService,
	dashboard DashboardService,
	statusTime StatusTimeService,
	analyze AnalyzeService,
	bugs BugService,
	authSvc AuthService,
	users UserService,
) *Server {
	dashboardHandler := NewDashboardHandler(dashboard, statusTime)
	analyzeHandler := NewAnalyzeHandler(analyze)
	bugHandler := NewBugHandler(bugs)
	authHandler := NewAuthHandler(authSvc)
	userHandler := NewUserHandler(users)

	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware)
	router.Use(recoveryMiddleware(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	authHandler.RegisterPublicRoutes(router)

	protected := router.PathPrefix("/").Subrouter()
	protected.Use(authMiddleware(tokens))
	dashboardHandler.RegisterRoutes(protected)
	analyzeHandler.RegisterRoutes(protected)
	bugHandler.RegisterRoutes(protected)
	authHandler.RegisterRoutes(protected)

	admin := protected.PathPrefix("/").Subrouter()
	admin.Use(adminMiddleware)
	userHandler.RegisterRoutes(admin)

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Handler exposes the configured router
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
