package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/ctxsearch/internal/llm"
)

const noIndexedProjects = "No indexed projects available"

// scaleThreshold is the collection count above which ScalableRoute's
// descriptor-index prefilter is required instead of listing every
// collection in the selector prompt directly.
const scaleThreshold = 50

// SmartQuery routes query to exactly one of collections, chosen by the
// complex LLM from a listing of all candidates, then searches there.
func (e *Engine) SmartQuery(ctx context.Context, query string, collections []string) (string, error) {
	if len(collections) == 0 {
		return noIndexedProjects, nil
	}

	chosen, err := e.selectCollection(ctx, query, collections)
	if err != nil {
		return "", err
	}
	return e.Search(ctx, query, chosen, defaultSearchK)
}

// ScalableRoute is SmartQuery for deployments with more collections than a
// single selector prompt can reasonably list: it first narrows candidates
// to the few whose descriptor best matches query, then routes among those.
func (e *Engine) ScalableRoute(ctx context.Context, query string) (string, error) {
	collections, err := e.resources.VectorClient().ListCollections(ctx)
	if err != nil {
		return "", err
	}
	if len(collections) == 0 {
		return noIndexedProjects, nil
	}

	candidates := collections
	if len(collections) > scaleThreshold {
		candidates, err = e.narrowCandidates(ctx, query, collections)
		if err != nil {
			return "", err
		}
	}

	chosen, err := e.selectCollection(ctx, query, candidates)
	if err != nil {
		return "", err
	}
	return e.Search(ctx, query, chosen, defaultSearchK)
}

// selectCollection asks the complex LLM to pick exactly one name from
// candidates as the best fit for query.
func (e *Engine) selectCollection(ctx context.Context, query string, candidates []string) (string, error) {
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nAvailable projects:\n", query)
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nReply with exactly one project name from the list above, the one most likely to answer the question. Reply with the name only.")

	reply, err := e.resources.LLM(llm.KindComplex).Complete(ctx, b.String())
	if err != nil {
		return "", err
	}

	choice := strings.TrimSpace(reply)
	for _, c := range candidates {
		if strings.EqualFold(choice, c) {
			return c, nil
		}
	}
	// the complex LLM didn't echo back a clean match; fall back to the
	// first candidate it mentions, else the first candidate overall
	for _, c := range candidates {
		if strings.Contains(choice, c) {
			return c, nil
		}
	}
	return candidates[0], nil
}

// narrowCandidates retrieves the descriptor index's top few matches for
// query's embedding and returns their collection names.
func (e *Engine) narrowCandidates(ctx context.Context, query string, all []string) ([]string, error) {
	results, err := e.store.Search(ctx, descriptorIndexCollection, query, scalableRouteTopN)
	if err != nil {
		// no descriptor index has been built yet; fall back to the full set
		return all, nil
	}

	seen := make(map[string]bool, len(results))
	narrowed := make([]string, 0, len(results))
	for _, r := range results {
		name, ok := r.Metadata["collection"].(string)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		narrowed = append(narrowed, name)
	}
	if len(narrowed) == 0 {
		return all, nil
	}
	return narrowed, nil
}

const descriptorIndexCollection = "_ctxsearch_descriptors"
const scalableRouteTopN = 5
const defaultSearchK = 5
