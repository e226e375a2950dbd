// Package llm provides a single completion interface over Ollama, OpenAI,
// and ElectronHub-compatible chat APIs.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// LLM completes a single prompt into a single text response.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Kind selects which configured model answers a request. It corresponds to
// the fast/complex/complex_alt triad so callers can request a specific tier
// directly, while resources.Registry.SmartLLM picks one automatically.
type Kind string

const (
	KindFast       Kind = "fast"
	KindComplex    Kind = "complex"
	KindComplexAlt Kind = "complex_alt"
)

// New builds the LLM for the given kind, using cfg.LLMProvider to pick the
// backend and cfg.{Fast,Complex,ComplexAlt}Model to pick the model name.
func New(cfg *config.Config, kind Kind) (LLM, error) {
	model := cfg.FastModel
	switch kind {
	case KindComplex:
		model = cfg.ComplexModel
	case KindComplexAlt:
		model = cfg.ComplexAltModel
	}
	if model == "" {
		return nil, fmt.Errorf("%w: no model configured for kind %q", ErrInvalidConfig, kind)
	}

	switch cfg.LLMProvider {
	case config.ProviderOllama, "":
		return NewOllama(OllamaConfig{Model: model}), nil
	case config.ProviderOpenAI:
		return NewOpenAICompatible(OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: model})
	case config.ProviderElectronHub:
		return NewOpenAICompatible(OpenAIConfig{
			APIKey:  cfg.ElectronHubAPIKey,
			BaseURL: cfg.ElectronHubBaseURL,
			Model:   model,
		})
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, cfg.LLMProvider)
	}
}
