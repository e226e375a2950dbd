package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/ctxsearch/internal/registry"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
)

func init() {
	registry.Register("violations", NewViolations)
	registry.Register("architecture_compliance", NewArchitectureCompliance)
}

type violations struct {
	engine *retrieval.Engine
}

// NewViolations builds the component reporting SRP/DIP/OCP/DRY findings
// for a collection.
func NewViolations(_ *resources.Registry, engine *retrieval.Engine) (registry.Component, error) {
	return &violations{engine: engine}, nil
}

func (c *violations) Run(ctx context.Context, params map[string]string) (string, error) {
	collection := params["collection"]
	if collection == "" {
		return "", fmt.Errorf("analysis: violations requires a collection parameter")
	}
	findings, err := c.engine.FindViolations(ctx, collection)
	if err != nil {
		return "", err
	}
	if len(findings) == 0 {
		return "No violations found.", nil
	}
	return strings.Join(findings, "\n\n"), nil
}

type architectureCompliance struct {
	engine *retrieval.Engine
}

// NewArchitectureCompliance builds the component reporting DI/resource-
// duplication/oversized-component/native-framework findings for a
// collection.
func NewArchitectureCompliance(_ *resources.Registry, engine *retrieval.Engine) (registry.Component, error) {
	return &architectureCompliance{engine: engine}, nil
}

func (c *architectureCompliance) Run(ctx context.Context, params map[string]string) (string, error) {
	collection := params["collection"]
	if collection == "" {
		return "", fmt.Errorf("analysis: architecture_compliance requires a collection parameter")
	}
	findings, err := c.engine.CheckArchitectureCompliance(ctx, collection, params["language"])
	if err != nil {
		return "", err
	}
	if len(findings) == 0 {
		return "No compliance issues found.", nil
	}
	return strings.Join(findings, "\n\n"), nil
}
