package analysis

import (
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/registry"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
)

func init() {
	registry.Register("api_contracts", NewAPIContracts)
}

// NewAPIContracts builds the component listing API endpoints and public
// functions defined across a collection's indexed code.
func NewAPIContracts(res *resources.Registry, engine *retrieval.Engine) (registry.Component, error) {
	return &promptComponent{
		resources: res,
		engine:    engine,
		key:       prompts.APIContracts,
		query:     "API endpoints, public functions, and their signatures",
	}, nil
}
