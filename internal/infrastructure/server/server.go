// Package server builds the HTTP server: storage backend, host client,
// template engine, middleware stack, and route table.
package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/trackerext/article-templates/backend/internal/api/http"
	"github.com/trackerext/article-templates/backend/internal/api/middleware"
	"github.com/trackerext/article-templates/backend/internal/domain/template"
	"github.com/trackerext/article-templates/backend/internal/host"
	"github.com/trackerext/article-templates/backend/internal/infrastructure/config"
	"github.com/trackerext/article-templates/backend/internal/infrastructure/logging"
	"github.com/trackerext/article-templates/backend/internal/infrastructure/monitoring"
	"github.com/trackerext/article-templates/backend/internal/storage"
)

// Hosts bundles the three platform ports. Tests inject a fake here.
type Hosts struct {
	Projects   host.Projects
	Articles   host.Articles
	Identities host.Identities
}

// Server wraps the HTTP server and dependencies
type Server struct {
	router    *gin.Engine
	templates *template.Service
	logger    *logging.Logger
	config    *config.Config
	metrics   *monitoring.Metrics
}

// NewServer creates a server wired to the real host platform.
func NewServer(cfg *config.Config) (*Server, error) {
	metrics := monitoring.NewMetrics()
	client := host.NewClient(host.ClientConfig{
		BaseURL:  cfg.Host.BaseURL,
		Token:    cfg.Host.Token,
		Recorder: metrics,
	})
	return newServer(cfg, Hosts{
		Projects:   client,
		Articles:   client,
		Identities: client,
	}, metrics)
}

// NewServerWithHosts creates a server against the given platform ports.
func NewServerWithHosts(cfg *config.Config, hosts Hosts) (*Server, error) {
	return newServer(cfg, hosts, monitoring.NewMetrics())
}

func newServer(cfg *config.Config, hosts Hosts, metrics *monitoring.Metrics) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing template service",
		zap.String("port", cfg.Server.Port),
		zap.String("tracker", cfg.Host.BaseURL),
		zap.String("storage", cfg.Storage.Driver),
	)

	backend, err := newBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}

	templates := template.NewService(backend, hosts.Projects, hosts.Articles, logger, template.Config{
		PurgeIntervalDays: cfg.Templates.PurgeIntervalDays,
	}).WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(templates, metrics, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	router.GET("/metrics/json", handlers.MetricsJSON)

	api := router.Group("/api")
	api.Use(middleware.Identity(hosts.Identities))
	{
		api.POST("/create-draft", handlers.CreateDraft)
		api.GET("/article-data", handlers.ArticleData)

		api.GET("/templates", handlers.ListTemplates)
		api.GET("/deleted-templates", handlers.ListDeletedTemplates)
		api.POST("/templates", handlers.UpsertTemplate)
		api.DELETE("/templates", handlers.DeleteTemplate)
		api.POST("/bulk-delete-templates", handlers.BulkDeleteTemplates)
		api.POST("/restore-template", handlers.RestoreTemplate)
		api.POST("/bulk-restore-templates", handlers.BulkRestoreTemplates)
		api.DELETE("/permanent-template", handlers.PermanentDeleteTemplate)
		api.POST("/import-predefined-templates", handlers.ImportPredefinedTemplates)

		api.GET("/user-preferences", handlers.UserPreferences)
		api.POST("/author-filter", handlers.SetAuthorFilter)
		api.POST("/project-filter", handlers.SetProjectFilter)
		api.POST("/toggle-favorite", handlers.ToggleFavorite)
		api.POST("/toggle-show-favorites", handlers.ToggleShowFavorites)

		api.GET("/settings", handlers.Settings)
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router:    router,
		templates: templates,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
	}, nil
}

func newBackend(cfg config.StorageConfig) (storage.Backend, error) {
	switch cfg.Driver {
	case "memory":
		return storage.NewMemory(), nil
	case "file":
		return storage.NewFile(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Router exposes the route table for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	s.logger.Sync()
	return nil
}
