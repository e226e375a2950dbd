// Package analysis implements the thin wrappers layered over the
// retrieval engine: business-rule extraction, domain-model and workflow
// summaries, API contract listings, library suggestions, architectural
// violation/compliance reports, and diagram generation. Each component
// holds no state beyond a borrowed *resources.Registry and *retrieval.Engine.
package analysis

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/ctxsearch/internal/llm"
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
)

const defaultRetrieveK = 8

// promptComponent is the shape shared by every retrieval-backed component:
// pull chunks for a collection, render a fixed prompt template over them,
// and answer with the fast LLM.
type promptComponent struct {
	resources *resources.Registry
	engine    *retrieval.Engine
	key       prompts.Key
	query     string // the retrieval probe issued to gather chunks
}

func (c *promptComponent) Run(ctx context.Context, params map[string]string) (string, error) {
	collection := params["collection"]
	if collection == "" {
		return "", fmt.Errorf("analysis: %q requires a collection parameter", c.key)
	}
	query := c.query
	if q := params["query"]; q != "" {
		query = q
	}

	chunks, err := c.engine.Retrieve(ctx, query, collection, defaultRetrieveK)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "No relevant content found.", nil
	}

	prompt, err := c.resources.Prompts().Render(c.key, map[string]interface{}{"Chunks": chunks})
	if err != nil {
		return "", err
	}
	return c.resources.LLM(llm.KindFast).Complete(ctx, prompt)
}
