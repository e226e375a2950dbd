package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/ctxsearch/internal/llm"
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/registry"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
)

func init() {
	registry.Register("library_suggest", NewLibrarySuggest)
}

// librarySuggest is LLM-only: it never retrieves, it just asks the complex
// LLM for library suggestions given a task description and the project's
// stated existing dependencies.
type librarySuggest struct {
	resources *resources.Registry
}

// NewLibrarySuggest builds the library-suggestion component. engine is
// accepted to satisfy registry.Constructor but unused — this component
// never retrieves.
func NewLibrarySuggest(res *resources.Registry, _ *retrieval.Engine) (registry.Component, error) {
	return &librarySuggest{resources: res}, nil
}

func (c *librarySuggest) Run(ctx context.Context, params map[string]string) (string, error) {
	task := params["task"]
	if task == "" {
		return "", fmt.Errorf("analysis: library_suggest requires a task parameter")
	}
	var existing []string
	if raw := params["existing"]; raw != "" {
		for _, dep := range strings.Split(raw, ",") {
			if dep = strings.TrimSpace(dep); dep != "" {
				existing = append(existing, dep)
			}
		}
	}

	prompt, err := c.resources.Prompts().Render(prompts.LibrarySuggest, map[string]interface{}{
		"Task":     task,
		"Existing": existing,
	})
	if err != nil {
		return "", err
	}
	return c.resources.LLM(llm.KindComplex).Complete(ctx, prompt)
}
