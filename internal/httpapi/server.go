// Package httpapi is the HTTP transport: an ultra-thin echo server where
// each route delegates straight to a core operation and formats its
// result or its apperr.Kind into a response. Grounded on the teacher's
// pkg/server.Server (Echo, Logger/Recover/RequestID middleware,
// context-aware Start/graceful-shutdown).
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/fyrsmithlabs/ctxsearch/internal/analysis" // registers components via init()
	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/indexstore"
	"github.com/fyrsmithlabs/ctxsearch/internal/registry"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
	"github.com/fyrsmithlabs/ctxsearch/internal/splitter"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP transport over the core service.
type Server struct {
	cfg        *config.Config
	resources  *resources.Registry
	store      *indexstore.Store
	engine     *retrieval.Engine
	components *registry.Registry
	router     *splitter.Router

	echo *echo.Echo
}

// New builds the HTTP server and registers every route.
func New(cfg *config.Config, res *resources.Registry, store *indexstore.Store, engine *retrieval.Engine) (*Server, error) {
	router, err := splitter.NewRouter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("building splitter router: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{
		cfg:        cfg,
		resources:  res,
		store:      store,
		engine:     engine,
		components: registry.New(res, engine),
		router:     router,
		echo:       e,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) collection(name string) string {
	return s.cfg.CollectionPrefix + name
}

func (s *Server) docsCollection(framework string) string {
	return "docs_" + framework
}

// Component resolves a named analysis component, for handlers that
// delegate through the ComponentRegistry (diagram, library_suggest)
// rather than calling retrieval.Engine directly.
func (s *Server) Component(name string) (registry.Component, error) {
	return s.components.Get(name)
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)

	s.echo.POST("/search", s.handleSearch)
	s.echo.POST("/index", s.handleIndex)
	s.echo.POST("/refresh/project", s.handleRefreshProject)
	s.echo.GET("/violations/:project", s.handleViolations)
	s.echo.GET("/analyze/architecture/:project", s.handleArchitecture)
	s.echo.POST("/analyze/overview", s.handleOverview)
	s.echo.GET("/check/violation", s.handleCheckViolation)
	s.echo.GET("/smart/query", s.handleSmartQuery)
	s.echo.GET("/exists", s.handleExists)
	s.echo.POST("/complex", s.handleComplex)
	s.echo.POST("/index/conversations", s.handleIndexConversations)
	s.echo.GET("/analyze/component/:name", s.handleAnalyzeComponent)

	s.echo.POST("/docs/index", s.handleDocsIndex)
	s.echo.POST("/docs/search", s.handleDocsSearch)
	s.echo.GET("/docs/libraries", s.handleDocsLibraries)
	s.echo.GET("/docs/library/:library", s.handleDocsLibrary)
	s.echo.GET("/docs/pattern", s.handleDocsPattern)
	s.echo.POST("/docs/index-framework", s.handleDocsIndexFramework)
	s.echo.GET("/docs/frameworks", s.handleDocsFrameworks)

	s.echo.GET("/graph/:project", s.handleGraph)
	s.echo.GET("/graph/:project/export", s.handleGraphExport)
	s.echo.GET("/graph/:project/visualize", s.handleGraphVisualize)

	s.echo.POST("/api/auto-docs/setup", s.handleAutoDocsSetup)
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "ctxsearch",
		"version": "0.1.0",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()
	collections, err := s.resources.VectorClient().ListCollections(ctx)
	status := "healthy"
	if err != nil {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": status,
		"components": map[string]interface{}{
			"vector_store":      err == nil,
			"collections_count": len(collections),
		},
	})
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}
