// Package scheduler runs the periodic documentation-refresh background
// task, grounded directly on the teacher's
// internal/reasoningbank.ConsolidationScheduler: a ticker-driven loop
// behind Start()/Stop(), a mutex-guarded running flag, and panic recovery
// around every run.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/indexstore"
	"github.com/fyrsmithlabs/ctxsearch/internal/logging"
	"github.com/fyrsmithlabs/ctxsearch/internal/reader"
	"github.com/fyrsmithlabs/ctxsearch/internal/splitter"
)

// errorRetryInterval is the secondary timer started from a failed run,
// shorter than any configured schedule so a transient failure doesn't
// wait a full day to retry.
const errorRetryInterval = time.Hour

// RefreshScheduler periodically re-indexes the configured documentation
// frameworks. A single background task; Start/Stop are idempotent and
// safe for concurrent use.
type RefreshScheduler struct {
	cfg    config.DocumentationConfig
	store  *indexstore.Store
	router *splitter.Router
	logger *logging.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// New builds a scheduler over cfg's documentation.refresh settings. store
// and router are shared with the rest of the process.
func New(cfg config.DocumentationConfig, store *indexstore.Store, router *splitter.Router, logger *logging.Logger) *RefreshScheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &RefreshScheduler{cfg: cfg, store: store, router: router, logger: logger}
}

// Start begins the background refresh loop. A no-op if refresh is
// disabled or the scheduler is already running.
func (s *RefreshScheduler) Start() {
	if !s.cfg.Refresh.Enabled {
		s.logger.Info(context.Background(), "documentation refresh disabled, scheduler not started")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.stopCh = make(chan struct{})
	s.running = true

	s.logger.Info(context.Background(), "refresh scheduler started",
		zap.String("schedule", string(s.cfg.Refresh.Schedule)),
		zap.Strings("frameworks", s.cfg.Refresh.Frameworks))

	go s.run()
}

// Stop signals the background loop to exit and returns immediately; the
// loop's select sees stopCh close on its next iteration, interrupting an
// in-progress ticker wait promptly. Idempotent.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}

func (s *RefreshScheduler) run() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(context.Background(), "refresh scheduler panicked, recovering", zap.Any("panic", r))
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}
	}()

	interval := s.cfg.Refresh.Schedule.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.safeRefreshAll(); err != nil {
			s.logger.Warn(context.Background(), "refresh run failed, retrying sooner", zap.Error(err))
			retry := time.NewTimer(errorRetryInterval)
			select {
			case <-retry.C:
			case <-s.stopCh:
				retry.Stop()
				return
			}
			continue
		}

		select {
		case <-ticker.C:
		case <-s.stopCh:
			return
		}
	}
}

func (s *RefreshScheduler) safeRefreshAll() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh run panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	var failed []string
	for _, framework := range s.cfg.Refresh.Frameworks {
		if refreshErr := s.refreshFramework(ctx, framework); refreshErr != nil {
			s.logger.Warn(ctx, "framework refresh failed", zap.String("framework", framework), zap.Error(refreshErr))
			failed = append(failed, framework)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("refresh failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

func (s *RefreshScheduler) refreshFramework(ctx context.Context, framework string) error {
	source, err := s.resolveSource(framework)
	if err != nil {
		return err
	}

	docs, err := sourceReader(source).LoadDocuments(ctx, source)
	if err != nil {
		return fmt.Errorf("loading documents for %s: %w", framework, err)
	}

	result, err := s.store.Refresh(ctx, framework, docs, s.router)
	if err != nil {
		return fmt.Errorf("refreshing %s: %w", framework, err)
	}

	s.logger.Info(ctx, "framework refreshed",
		zap.String("framework", framework),
		zap.Int("total", result.Total),
		zap.Int("refreshed", result.Refreshed),
		zap.Int("unchanged", result.Unchanged))
	return nil
}

// resolveSource finds the configured docs location for framework: the
// auto_index URL if set, else the shared or offline docs path.
func (s *RefreshScheduler) resolveSource(framework string) (string, error) {
	if auto, ok := s.cfg.AutoIndex[framework]; ok && auto.URL != "" {
		return auto.URL, nil
	}
	if s.cfg.OfflineMode && s.cfg.OfflineDocsPath != "" {
		return s.cfg.OfflineDocsPath + "/" + framework, nil
	}
	if s.cfg.SharedDocsPath != "" {
		return s.cfg.SharedDocsPath + "/" + framework, nil
	}
	return "", fmt.Errorf("no docs source configured for framework %q", framework)
}

// sourceReader picks a Reader by source shape: an http(s) URL crawls,
// otherwise it's treated as a local directory.
func sourceReader(source string) reader.Reader {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return reader.NewWebCrawlReader(2)
	}
	return reader.NewDirectoryReader(config.IndexingConfig{Recursive: true})
}
