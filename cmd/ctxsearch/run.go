package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/graphextract"
	"github.com/fyrsmithlabs/ctxsearch/internal/httpapi"
	"github.com/fyrsmithlabs/ctxsearch/internal/indexstore"
	"github.com/fyrsmithlabs/ctxsearch/internal/llm"
	"github.com/fyrsmithlabs/ctxsearch/internal/logging"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
	"github.com/fyrsmithlabs/ctxsearch/internal/scheduler"
	"github.com/fyrsmithlabs/ctxsearch/internal/splitter"
)

var (
	runConfigPath string
	runDataDir    string
)

// runCmd starts the HTTP daemon in-process, for environments that run the
// CLI binary itself as the long-lived service rather than ctxsearchd.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the ctxsearch HTTP server in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		cfg, err := config.Load(runConfigPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger, err := logging.New(logging.NewDefaultConfig())
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		res, err := resources.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("building resources: %w", err)
		}
		defer func() { _ = res.Close() }()

		extractor := graphextract.New(res.LLM(llm.KindComplex), res.Prompts())
		store, err := indexstore.New(res.VectorClient(), runDataDir, extractor, cfg.NumWorkers, logger)
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

		server, err := httpapi.New(cfg, res, store, engine)
		if err != nil {
			return fmt.Errorf("building http server: %w", err)
		}

		logger.Info(ctx, "serving", zap.String("addr", cfg.HTTPAddr))
		return server.Start(ctx, cfg.HTTPAddr)
	},
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "path to a YAML config file (optional)")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./storage", "directory for manifests, hashes, and triplets")
}
