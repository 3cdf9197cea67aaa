// Package api exposes the dashboard pipeline over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"csvdash/app"
	"csvdash/ports"
)

// multipartOverhead is the allowance for multipart framing on top of the
// configured upload size.
const multipartOverhead = 1 << 20

// Server represents the HTTP API for the dashboard
type Server struct {
	router    *gin.Engine
	service   *app.DashboardService
	store     ports.DatasetStore
	maxUpload int64
	logger    *zap.Logger
}

// NewServer creates the router with middleware and routes installed.
func NewServer(service *app.DashboardService, store ports.DatasetStore, maxUpload int64, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:    gin.New(),
		service:   service,
		store:     store,
		maxUpload: maxUpload,
		logger:    logger.Named("api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(Logger(s.logger))
	s.router.Use(gin.Recovery())
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		datasets := v1.Group("/datasets")
		datasets.GET("", s.handleListDatasets)
		datasets.POST("", BodyLimit(s.maxUpload+multipartOverhead), s.handleUpload)
		datasets.GET("/:id", s.handleGetDataset)
		datasets.DELETE("/:id", s.handleDeleteDataset)
		datasets.POST("/:id/analysis", s.handleAnalysis)
		datasets.POST("/:id/chart.png", s.handleChart)
	}
}
