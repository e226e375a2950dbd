// Command ctxsearchd is the ctxsearch daemon: it wires every dependency
// once at process start and serves the HTTP and stdio-MCP transports
// concurrently until terminated.
//
// Configuration is loaded from an optional YAML file (-config) overlaid
// with environment variables. See internal/config for the full mapping.
//
// Usage:
//
//	ctxsearchd
//	ctxsearchd -config /etc/ctxsearch/config.yaml
//	ctxsearchd version
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/graphextract"
	"github.com/fyrsmithlabs/ctxsearch/internal/httpapi"
	"github.com/fyrsmithlabs/ctxsearch/internal/indexstore"
	"github.com/fyrsmithlabs/ctxsearch/internal/llm"
	"github.com/fyrsmithlabs/ctxsearch/internal/logging"
	"github.com/fyrsmithlabs/ctxsearch/internal/mcpapi"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
	"github.com/fyrsmithlabs/ctxsearch/internal/scheduler"
	"github.com/fyrsmithlabs/ctxsearch/internal/splitter"
)

var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	dataDir := flag.String("data-dir", "./storage", "directory for manifests, hashes, and triplets")
	mcpOnly := flag.Bool("mcp", false, "serve only the stdio MCP transport, skip HTTP")
	flag.Parse()

	if flag.NArg() > 0 && flag.Arg(0) == "version" {
		fmt.Printf("ctxsearchd %s (%s)\n", version, gitCommit)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, shutting down", sig)
		cancel()
	}()

	if err := run(ctx, *configPath, *dataDir, *mcpOnly); err != nil {
		log.Fatalf("ctxsearchd: %v", err)
	}
	log.Println("shutdown complete")
}

func run(ctx context.Context, configPath, dataDir string, mcpOnly bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(logging.NewDefaultConfig())
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info(ctx, "starting ctxsearchd",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("qdrant_url", cfg.QdrantURL))

	res, err := resources.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("building resources: %w", err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error(ctx, "closing resources", zap.Error(err))
		}
	}()

	extractor := graphextract.New(res.LLM(llm.KindComplex), res.Prompts())
	store, err := indexstore.New(res.VectorClient(), dataDir, extractor, cfg.NumWorkers, logger)
	if err != nil {
		return fmt.Errorf("building index store: %w", err)
	}

	engine := retrieval.New(store, res)

	router, err := splitter.NewRouter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("building splitter router: %w", err)
	}

	refresh := scheduler.New(cfg.Documentation, store, router, logger)
	refresh.Start()
	defer refresh.Stop()

	mcpServer, err := mcpapi.New(mcpapi.DefaultConfig(), cfg, res, store, engine)
	if err != nil {
		return fmt.Errorf("building mcp server: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		if err := mcpServer.Run(ctx); err != nil {
			errCh <- fmt.Errorf("mcp server: %w", err)
		}
	}()

	if mcpOnly {
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return nil
		}
	}

	httpServer, err := httpapi.New(cfg, res, store, engine)
	if err != nil {
		return fmt.Errorf("building http server: %w", err)
	}
	go func() {
		if err := httpServer.Start(ctx, cfg.HTTPAddr); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
