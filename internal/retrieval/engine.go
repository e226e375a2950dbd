package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
	"github.com/fyrsmithlabs/ctxsearch/internal/indexstore"
	"github.com/fyrsmithlabs/ctxsearch/internal/llm"
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/vectorstore"
)

// Engine is the hybrid retrieval engine: cache-first search, citations,
// existence checks, violation/compliance scans, and multi-collection
// routing. It holds no mutable state besides what the shared cache holds.
type Engine struct {
	store     *indexstore.Store
	resources *resources.Registry
}

// New builds an Engine borrowing store and res; both are owned elsewhere.
func New(store *indexstore.Store, res *resources.Registry) *Engine {
	return &Engine{store: store, resources: res}
}

// notIndexedError is the NotFound error every retrieval operation returns
// for an absent collection. Transports render it as the literal string
// "Error: Project '<name>' not indexed" rather than a structured error
// response, matching the legacy text-answer surface this service exposes
// over MCP and the CLI.
func notIndexedError(collection string) error {
	return apperr.NotFound(fmt.Sprintf("Project '%s' not indexed", collection))
}

// NotIndexedMessage renders the literal not-indexed string transports use
// verbatim in place of a structured error.
func NotIndexedMessage(collection string) string {
	return fmt.Sprintf("Error: Project '%s' not indexed", collection)
}

// orderResults sorts by descending score, ties broken by ascending node id.
func orderResults(results []vectorstore.SearchResult) []vectorstore.SearchResult {
	sorted := make([]vectorstore.SearchResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// Search performs cache-first retrieval and returns a compact synthesized
// answer.
func (e *Engine) Search(ctx context.Context, query, collection string, k int) (string, error) {
	if cached, ok := e.resources.Cache().GetQuery(ctx, query, k, collection); ok {
		var answer string
		if err := json.Unmarshal(cached, &answer); err == nil {
			return answer, nil
		}
	}

	results, err := e.store.Search(ctx, collection, query, k)
	if err != nil {
		if apperr.Is(err, apperr.NotFoundKind) {
			return "", notIndexedError(collection)
		}
		return "", err
	}

	answer, err := e.synthesize(ctx, query, orderResults(results))
	if err != nil {
		return "", err
	}

	e.resources.Cache().PutQuery(ctx, query, k, collection, answer)
	return answer, nil
}

// SearchWithCitations performs the same retrieval as Search but also
// returns the k source nodes as ranked citations.
func (e *Engine) SearchWithCitations(ctx context.Context, query, collection string, k int) (CitationAnswer, error) {
	results, err := e.store.Search(ctx, collection, query, k)
	if err != nil {
		if apperr.Is(err, apperr.NotFoundKind) {
			return CitationAnswer{}, notIndexedError(collection)
		}
		return CitationAnswer{}, err
	}
	ordered := orderResults(results)

	answer, err := e.synthesize(ctx, query, ordered)
	if err != nil {
		return CitationAnswer{}, err
	}

	citations := make([]Citation, 0, len(ordered))
	for i, r := range ordered {
		citations = append(citations, Citation{
			Rank:    i + 1,
			File:    fileOf(r.Metadata),
			Score:   r.Score,
			Preview: truncate(r.Content, maxPreviewChars),
		})
	}

	return CitationAnswer{Answer: answer, Citations: citations}, nil
}

// Exists reports whether component is described in collection with
// confidence at or above the spec's fixed threshold.
func (e *Engine) Exists(ctx context.Context, component, collection string) (ExistenceResult, error) {
	results, err := e.store.Search(ctx, collection, component, 1)
	if err != nil {
		if apperr.Is(err, apperr.NotFoundKind) {
			return ExistenceResult{Exists: false, Error: NotIndexedMessage(collection)}, nil
		}
		return ExistenceResult{}, err
	}
	if len(results) == 0 {
		return ExistenceResult{Exists: false}, nil
	}

	top := orderResults(results)[0]
	confidence := float64(top.Score)
	return ExistenceResult{
		Exists:     confidence >= existenceThreshold,
		Confidence: confidence,
		Context:    truncate(top.Content, maxExistenceContextChars),
	}, nil
}

// Retrieve returns the top-k source nodes for query against collection as
// full-text chunks, without synthesis or caching. It is the raw read path
// the analysis layer builds its own prompts from.
func (e *Engine) Retrieve(ctx context.Context, query, collection string, k int) ([]Chunk, error) {
	results, err := e.store.Search(ctx, collection, query, k)
	if err != nil {
		if apperr.Is(err, apperr.NotFoundKind) {
			return nil, notIndexedError(collection)
		}
		return nil, err
	}

	ordered := orderResults(results)
	chunks := make([]Chunk, 0, len(ordered))
	for _, r := range ordered {
		chunks = append(chunks, Chunk{File: fileOf(r.Metadata), Score: r.Score, Text: r.Content})
	}
	return chunks, nil
}

func (e *Engine) synthesize(ctx context.Context, query string, results []vectorstore.SearchResult) (string, error) {
	if len(results) == 0 {
		return fmt.Sprintf("No information found for %q.", query), nil
	}

	type chunk struct {
		File  string
		Score float32
		Text  string
	}
	chunks := make([]chunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, chunk{File: fileOf(r.Metadata), Score: r.Score, Text: r.Content})
	}

	prompt, err := e.resources.Prompts().Render(prompts.ComplexSynthesis, map[string]interface{}{
		"Query":  query,
		"Chunks": chunks,
	})
	if err != nil {
		return "", fmt.Errorf("rendering synthesis prompt: %w", err)
	}

	answer, err := e.resources.LLM(llm.KindFast).Complete(ctx, prompt)
	if err != nil {
		return "", apperr.Wrap(apperr.BackendErrorKind, "synthesizing answer", err)
	}
	return answer, nil
}

func fileOf(metadata map[string]interface{}) string {
	if f, ok := metadata["file"].(string); ok {
		return f
	}
	if f, ok := metadata["url"].(string); ok {
		return f
	}
	return ""
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
