// Package embeddings provides embedding generation via Ollama or OpenAI,
// implementing vectorstore.Embedder.
package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/vectorstore"
)

var (
	ErrEmptyInput     = errors.New("empty or nil input texts")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Provider is an embedding backend. Every implementation also satisfies
// vectorstore.Embedder.
type Provider interface {
	vectorstore.Embedder
	Close() error
}

// New builds the embedding Provider selected by cfg.EmbedProvider.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.EmbedProvider {
	case config.EmbedProviderOllama, "":
		model := cfg.OllamaEmbedModel
		if model == "" {
			model = "nomic-embed-text"
		}
		return NewOllamaProvider(OllamaConfig{Model: model})
	case config.EmbedProviderOpenAI:
		model := cfg.OpenAIEmbedModel
		if model == "" {
			model = "text-embedding-3-small"
		}
		return NewOpenAIProvider(OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: model})
	default:
		return nil, fmt.Errorf("%w: unknown embed provider %q", ErrInvalidConfig, cfg.EmbedProvider)
	}
}

// dimensionForModel returns the known embedding width for common models,
// falling back to a safe default for unrecognized ones.
func dimensionForModel(model string) int {
	switch model {
	case "nomic-embed-text":
		return 768
	case "mxbai-embed-large":
		return 1024
	case "text-embedding-3-small":
		return 1536
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-ada-002":
		return 1536
	default:
		return 768
	}
}

// contextDeadline wraps ctx with the fast-LLM-kind request deadline from
// config.ModelTimeout, since embedding calls share the "fast" budget.
func contextDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, config.ModelTimeout("fast"))
}
