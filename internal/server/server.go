// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/coursecast/internal/api"
	"github.com/stwalsh4118/coursecast/internal/config"
	"github.com/stwalsh4118/coursecast/internal/db"
	"github.com/stwalsh4118/coursecast/internal/logger"
	"github.com/stwalsh4118/coursecast/internal/middleware"
	"github.com/stwalsh4118/coursecast/internal/progress"
)

// Server represents the HTTP server
type Server struct {
	config          *config.Config
	db              *db.DB
	repos           *db.Repositories
	progressService *progress.Service
	router          *gin.Engine
	server          *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB) *Server {
	repos := db.NewRepositories(database)

	return &Server{
		config:          cfg,
		db:              database,
		repos:           repos,
		progressService: progress.NewService(database, repos),
	}
}

// corsConfig allows any origin to embed the player while letting it send
// bearer tokens and range requests
func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions}
	cfg.AddAllowHeaders("Authorization", "Range")
	cfg.ExposeHeaders = []string{"Content-Length", "Content-Range", "Accept-Ranges"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

// Handler builds the router on first use and returns it
func (s *Server) Handler() http.Handler {
	if s.router == nil {
		s.setupRouter()
	}
	return s.router
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.router.Use(middleware.RequestLogger())
	s.router.Use(gin.Recovery())
	s.router.Use(cors.New(corsConfig()))

	apiGroup := s.router.Group("/api")
	requireViewer := middleware.RequireViewer(s.config.Auth.JWTSecret)

	api.SetupHealthRoutes(apiGroup, s.db)
	api.SetupVideoRoutes(apiGroup, s.repos, s.progressService, s.config.Media.SupportedFormats)
	api.SetupStreamRoutes(apiGroup, s.progressService, s.config.Media.LibraryPath, requireViewer)
	api.SetupProgressRoutes(apiGroup, s.progressService, requireViewer)

	if s.config.Auth.AllowTokenMint {
		logger.Log.Warn().Msg("Development token endpoint enabled at POST /api/tokens")
		api.SetupTokenRoutes(apiGroup, s.config.Auth.JWTSecret, s.config.Auth.TokenTTL)
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Str("media_library", s.config.Media.LibraryPath).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
