package analysis

import (
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/registry"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
)

func init() {
	registry.Register("business_rules", NewBusinessRules)
}

// NewBusinessRules builds the component extracting business rules implied
// by a collection's indexed code and docs.
func NewBusinessRules(res *resources.Registry, engine *retrieval.Engine) (registry.Component, error) {
	return &promptComponent{
		resources: res,
		engine:    engine,
		key:       prompts.BusinessRules,
		query:     "business rules, validation constraints, and domain invariants",
	}, nil
}
