// Package mcpapi is the stdio MCP transport: a thin wrapper around
// github.com/modelcontextprotocol/go-sdk/mcp where every tool delegates
// straight into the core (retrieval.Engine, indexstore.Store,
// resources.Registry), grounded on the teacher's internal/mcp.Server
// (tools call internal services directly, no daemon hop).
package mcpapi

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/indexstore"
	"github.com/fyrsmithlabs/ctxsearch/internal/logging"
	"github.com/fyrsmithlabs/ctxsearch/internal/registry"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
	"github.com/fyrsmithlabs/ctxsearch/internal/splitter"
)

// Config names and versions the server for the MCP initialize handshake.
type Config struct {
	Name    string
	Version string
	Logger  *logging.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{Name: "ctxsearch", Version: "1.0.0", Logger: logging.NewNop()}
}

// Server is the stdio MCP server over the core service.
type Server struct {
	mcp        *mcp.Server
	cfg        *config.Config
	resources  *resources.Registry
	store      *indexstore.Store
	engine     *retrieval.Engine
	components *registry.Registry
	router     *splitter.Router
	logger     *logging.Logger
}

// New builds the MCP server and registers every tool.
func New(mcpCfg *Config, cfg *config.Config, res *resources.Registry, store *indexstore.Store, engine *retrieval.Engine) (*Server, error) {
	if mcpCfg == nil {
		mcpCfg = DefaultConfig()
	}

	router, err := splitter.NewRouter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("building splitter router: %w", err)
	}

	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    mcpCfg.Name,
			Version: mcpCfg.Version,
		}, nil),
		cfg:        cfg,
		resources:  res,
		store:      store,
		engine:     engine,
		components: registry.New(res, engine),
		router:     router,
		logger:     mcpCfg.Logger,
	}
	s.registerTools()
	return s, nil
}

func (s *Server) collection(name string) string {
	return s.cfg.CollectionPrefix + name
}

func (s *Server) docsCollection(framework string) string {
	return "docs_" + framework
}

// Run starts the MCP server on the stdio transport. It blocks until ctx is
// cancelled or the transport returns an error.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server run: %w", err)
	}
	return nil
}
