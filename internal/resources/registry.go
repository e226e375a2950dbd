// Package resources builds and owns the process-wide dependencies every
// other component needs: the vector store client, embedder, LLM providers,
// cache, prompt templates, and config. It is the realization of the
// "single immutable environment value" design note — built once at process
// start with New, passed by reference, never mutated.
package resources

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
	"github.com/fyrsmithlabs/ctxsearch/internal/cache"
	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/embeddings"
	"github.com/fyrsmithlabs/ctxsearch/internal/llm"
	"github.com/fyrsmithlabs/ctxsearch/internal/logging"
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/vectorstore"
	"go.uber.org/zap"
)

var complexKeywords = []string{
	"analyze", "reasoning", "planning", "workflow", "business logic",
	"architecture", "design patterns", "violations", "entity extraction",
	"relationships", "graph", "property graph", "code analysis",
}

var simpleKeywords = []string{
	"search", "find", "get", "list", "health", "status", "exists",
	"simple", "basic", "quick", "fast", "documentation", "function signatures",
}

// Registry is the concrete, immutable set of process-wide dependencies.
type Registry struct {
	cfg      *config.Config
	logger   *logging.Logger
	vstore   vectorstore.Store
	embedder embeddings.Provider
	fastLLM  llm.LLM
	complex  llm.LLM
	alt      llm.LLM
	cache    *cache.Cache
	prompts  *prompts.Store

	closeOnce sync.Once
	closed    bool
	closeMu   sync.RWMutex
}

// Options supplies every dependency New assembles into a Registry. Tests
// construct Options directly with fakes; production wiring goes through
// New(cfg).
type Options struct {
	Config   *config.Config
	Logger   *logging.Logger
	Store    vectorstore.Store
	Embedder embeddings.Provider
	FastLLM  llm.LLM
	Complex  llm.LLM
	Alt      llm.LLM
	Cache    *cache.Cache
	Prompts  *prompts.Store
}

// NewFromOptions builds a Registry directly from pre-constructed
// dependencies, bypassing provider selection. Used by tests and by New.
func NewFromOptions(opts Options) *Registry {
	return &Registry{
		cfg:      opts.Config,
		logger:   opts.Logger,
		vstore:   opts.Store,
		embedder: opts.Embedder,
		fastLLM:  opts.FastLLM,
		complex:  opts.Complex,
		alt:      opts.Alt,
		cache:    opts.Cache,
		prompts:  opts.Prompts,
	}
}

// New builds every dependency from cfg: embedder, LLM providers (fast,
// complex, complex_alt), the vector store (chromem or Qdrant, per
// cfg.VectorStoreProvider), the cache, and loads prompt templates.
func New(cfg *config.Config, logger *logging.Logger) (*Registry, error) {
	embedder, err := embeddings.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("building embedder: %w", err)
	}

	fastLLM, err := llm.New(cfg, llm.KindFast)
	if err != nil {
		return nil, fmt.Errorf("building fast llm: %w", err)
	}
	complexLLM, err := llm.New(cfg, llm.KindComplex)
	if err != nil {
		return nil, fmt.Errorf("building complex llm: %w", err)
	}
	altLLM, err := llm.New(cfg, llm.KindComplexAlt)
	if err != nil {
		return nil, fmt.Errorf("building complex_alt llm: %w", err)
	}

	var loggerZap *zap.Logger
	if logger != nil {
		loggerZap = logger.Underlying()
	}
	store, err := newVectorStore(cfg, embedder, loggerZap)
	if err != nil {
		return nil, fmt.Errorf("building vector store: %w", err)
	}

	c, err := cache.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("building cache: %w", err)
	}

	p, err := prompts.Load()
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}

	return NewFromOptions(Options{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Embedder: embedder,
		FastLLM:  fastLLM,
		Complex:  complexLLM,
		Alt:      altLLM,
		Cache:    c,
		Prompts:  p,
	}), nil
}

// newVectorStore selects the vector store implementation named by
// cfg.VectorStoreProvider: "chromem" (default, embedded, zero external
// dependencies) or "qdrant" (gRPC server, for larger or multi-node corpora).
func newVectorStore(cfg *config.Config, embedder vectorstore.Embedder, logger *zap.Logger) (vectorstore.Store, error) {
	switch cfg.VectorStoreProvider {
	case "chromem", "":
		return vectorstore.NewChromemStore(vectorstore.ChromemConfig{
			Path:       cfg.ChromemPath,
			Compress:   cfg.ChromemCompress,
			VectorSize: embedder.Dimensions(),
		}, embedder, logger)
	case "qdrant":
		return vectorstore.NewQdrantStore(vectorstore.QdrantConfig{URL: cfg.QdrantURL}, embedder)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s (supported: chromem, qdrant)", cfg.VectorStoreProvider)
	}
}

func (r *Registry) checkOpen() error {
	r.closeMu.RLock()
	defer r.closeMu.RUnlock()
	if r.closed {
		return apperr.New(apperr.ShutdownErrorKind, "resources: registry is closed")
	}
	return nil
}

// VectorClient returns the dense-vector store.
func (r *Registry) VectorClient() vectorstore.Store { return r.vstore }

// Embedder returns the embedding provider.
func (r *Registry) Embedder() embeddings.Provider { return r.embedder }

// LLM returns the provider configured for the requested tier.
func (r *Registry) LLM(kind llm.Kind) llm.LLM {
	switch kind {
	case llm.KindComplex:
		return r.complex
	case llm.KindComplexAlt:
		return r.alt
	default:
		return r.fastLLM
	}
}

// SmartLLM classifies taskDescription and returns the matching tier's LLM.
// Simple-keyword membership is checked before complex-keyword membership,
// so a description mentioning both ("quick architecture check") resolves
// fast, favoring cost over capability on ambiguous input.
func (r *Registry) SmartLLM(ctx context.Context, taskDescription string) llm.LLM {
	kind := ClassifyTask(taskDescription)
	logging.FromContext(ctx).Debug(ctx, "smart_llm classified task", zap.String("kind", string(kind)))
	return r.LLM(kind)
}

// ClassifyTask implements the fast/complex keyword routing rule used by
// SmartLLM, split out so the classification can be computed without a
// Registry.
func ClassifyTask(taskDescription string) llm.Kind {
	lower := strings.ToLower(taskDescription)

	for _, kw := range simpleKeywords {
		if strings.Contains(lower, kw) {
			return llm.KindFast
		}
	}
	for _, kw := range complexKeywords {
		if strings.Contains(lower, kw) {
			return llm.KindComplex
		}
	}
	return llm.KindFast
}

// Cache returns the shared query/ingestion cache.
func (r *Registry) Cache() *cache.Cache { return r.cache }

// Prompts returns the loaded prompt template store.
func (r *Registry) Prompts() *prompts.Store { return r.prompts }

// Config returns the resolved configuration.
func (r *Registry) Config() *config.Config { return r.cfg }

// Logger returns the process-wide logger.
func (r *Registry) Logger() *logging.Logger { return r.logger }

// Close idempotently tears down every owned resource: the vector store
// connection, the embedder (if it holds resources), and the cache.
func (r *Registry) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.closeMu.Lock()
		r.closed = true
		r.closeMu.Unlock()

		if cerr := r.vstore.Close(); cerr != nil {
			err = fmt.Errorf("closing vector store: %w", cerr)
		}
		if cerr := r.embedder.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing embedder: %w", cerr)
		}
		if cerr := r.cache.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing cache: %w", cerr)
		}
	})
	return err
}
