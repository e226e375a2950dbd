package analysis

import (
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/registry"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
)

func init() {
	registry.Register("domain_model", NewDomainModel)
}

// NewDomainModel builds the component identifying domain entities and
// their relationships from a collection's indexed content.
func NewDomainModel(res *resources.Registry, engine *retrieval.Engine) (registry.Component, error) {
	return &promptComponent{
		resources: res,
		engine:    engine,
		key:       prompts.DomainModel,
		query:     "domain entities, models, and their relationships",
	}, nil
}
