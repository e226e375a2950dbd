package graphextract

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/ctxsearch/internal/llm"
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/splitter"
)

// Extractor derives schema-constrained triplets from split nodes: a regex
// pass seeds candidate entities, then the LLM assigns relations between
// them and a validating parser drops anything outside the schema.
type Extractor struct {
	model   llm.LLM
	prompts *prompts.Store
}

// New builds an Extractor. model is expected to be the complex-tier LLM,
// since relation assignment is an analysis task.
func New(model llm.LLM, store *prompts.Store) *Extractor {
	return &Extractor{model: model, prompts: store}
}

// ExtractNode seeds candidates from node.Text, asks the LLM to assign
// relations, and returns only the triplets that survive schema validation
// against kind's entity-type vocabulary.
func (e *Extractor) ExtractNode(ctx context.Context, node splitter.Node, kind ContentKind) ([]Triplet, error) {
	candidates := seedCandidates(node.Text)
	if len(candidates) < 2 {
		return nil, nil
	}

	candidateNames := make([]string, len(candidates))
	for i, c := range candidates {
		candidateNames[i] = fmt.Sprintf("%s:%s", c.Type, c.Name)
	}

	prompt, err := e.prompts.Render(prompts.GraphExtract, map[string]interface{}{
		"Candidates": candidateNames,
		"Text":       node.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering graph extraction prompt: %w", err)
	}

	completion, err := e.model.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("completing graph extraction: %w", err)
	}

	return parseTriplets(completion, node.ID, kind), nil
}

// parseTriplets parses "Type:Subject | RELATION | Type:Object" lines,
// silently dropping any line that doesn't parse or violates the schema for
// the given content kind.
func parseTriplets(completion, sourceNodeID string, kind ContentKind) []Triplet {
	var triplets []Triplet
	for _, line := range strings.Split(completion, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			continue
		}

		subject, ok := parseTypedEntity(parts[0], kind)
		if !ok {
			continue
		}
		relation := Relation(strings.ToLower(strings.TrimSpace(parts[1])))
		if !validRelations[relation] {
			continue
		}
		object, ok := parseTypedEntity(parts[2], kind)
		if !ok {
			continue
		}

		triplets = append(triplets, Triplet{
			Subject:      subject,
			Predicate:    relation,
			Object:       object,
			SourceNodeID: sourceNodeID,
		})
	}
	return triplets
}

func parseTypedEntity(raw string, kind ContentKind) (NodeEntity, bool) {
	raw = strings.TrimSpace(raw)
	typ, name, found := strings.Cut(raw, ":")
	if !found {
		return NodeEntity{}, false
	}
	typ = strings.TrimSpace(typ)
	name = strings.TrimSpace(name)
	if name == "" {
		return NodeEntity{}, false
	}
	entityType := EntityType(typ)
	if !validEntityType(kind, entityType) {
		return NodeEntity{}, false
	}
	return NodeEntity{Type: entityType, Name: name}, true
}
