package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/api/handlers"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/config"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/metrics"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/registry"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/service"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
)

// Server represents the API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	logger     logging.Logger
}

// Config holds the server configuration
type Config struct {
	Port string
}

// Dependencies holds the server dependencies
type Dependencies struct {
	Logger          logging.Logger
	RegistryManager *registry.RegistryManager
	Service         *service.Service
}

// NewServer creates a new API server
func NewServer(cfg Config, deps Dependencies) *Server {
	if config.IsDevMode() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	srv := &Server{
		router: router,
		logger: deps.Logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%s", config.GetHost(), cfg.Port),
			Handler: router,
		},
	}

	srv.setupMiddleware()
	srv.setupRoutes(deps)

	return srv
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("Starting API server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server")
	return s.httpServer.Shutdown(ctx)
}

// setupMiddleware sets up the middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())

	s.router.Use(func(c *gin.Context) {
		c.Next()
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	})

	s.router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] %s %s %d %s %s\n",
			param.TimeStamp.Format(time.RFC3339),
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency,
			param.ErrorMessage,
		)
	}))
}

// setupRoutes sets up the routes for the server
func (s *Server) setupRoutes(deps Dependencies) {
	// Health check and metrics
	s.router.GET("/health", handlers.HandleHealth(deps.Logger, deps.RegistryManager))
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := s.router.Group("/api/v1/subscriptions")
	{
		v1.POST("", handlers.HandleRegister(deps.Logger, deps.Service))
		v1.DELETE("/:request_id", handlers.HandleUnregister(deps.Logger, deps.Service))
		v1.GET("/:request_id", handlers.HandleStatus(deps.Logger, deps.RegistryManager))
	}
}
