// Package container builds the application's dependency graph from
// configuration.
package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"csvdash/adapters/excel"
	"csvdash/adapters/render"
	"csvdash/app"
	"csvdash/internal/api"
	"csvdash/internal/classify"
	"csvdash/internal/config"
	"csvdash/internal/session"
	"csvdash/internal/window"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Pipeline stages
	Reader     *excel.DataReader
	Classifier *classify.Classifier
	Resolver   *window.Resolver
	Renderer   *render.PNGRenderer

	// Services
	Dashboard *app.DashboardService
	Store     *session.MemoryStore
	Server    *api.Server

	cancel context.CancelFunc
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	readerConfig := excel.DefaultReaderConfig()
	c.Reader = excel.NewDataReader(readerConfig, logger)
	c.Classifier = classify.New(cfg.Classify, logger)
	c.Resolver = window.NewResolver(logger)
	c.Renderer = render.NewPNGRenderer(cfg.Render.Width, cfg.Render.Height, logger)
	c.Dashboard = app.NewDashboardService(c.Reader, c.Classifier, c.Resolver, c.Renderer, logger)

	return c, nil
}

// InitServer creates the session store and HTTP server and starts the
// store's expiry sweeper. It is not needed for one-shot CLI use.
func (c *Container) InitServer(ctx context.Context) error {
	if c.Server != nil {
		return fmt.Errorf("server already initialized")
	}
	c.Store = session.NewMemoryStore(c.Config.Session.TTL, c.Logger)
	c.Server = api.NewServer(c.Dashboard, c.Store, c.Config.Upload.MaxBytes, c.Logger)

	sweepCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.Store.Run(sweepCtx, c.Config.Session.SweepInterval)
	return nil
}

// Shutdown stops background work.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	_ = c.Logger.Sync()
	return nil
}
