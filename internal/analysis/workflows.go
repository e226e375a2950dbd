package analysis

import (
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/registry"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
)

func init() {
	registry.Register("workflows", NewWorkflows)
}

// NewWorkflows builds the component describing end-to-end workflows
// implemented across a collection's indexed code.
func NewWorkflows(res *resources.Registry, engine *retrieval.Engine) (registry.Component, error) {
	return &promptComponent{
		resources: res,
		engine:    engine,
		key:       prompts.Workflows,
		query:     "end-to-end workflows, request handling, and process steps",
	}, nil
}
