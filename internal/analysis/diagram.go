package analysis

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/fyrsmithlabs/ctxsearch/internal/llm"
	"github.com/fyrsmithlabs/ctxsearch/internal/prompts"
	"github.com/fyrsmithlabs/ctxsearch/internal/registry"
	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
)

//go:embed diagrams/*.tmpl
var diagramFiles embed.FS

var diagramTemplates = template.Must(template.ParseFS(diagramFiles, "diagrams/*.tmpl"))

func init() {
	registry.Register("diagram", NewDiagram)
}

// edgeLine matches the "A -- relationship --> B" lines the domain_model
// and workflows prompts already produce, reused here as a deterministic
// edge list to render into a diagram rather than free text.
var edgeLine = regexp.MustCompile(`^\s*(.+?)\s*--\s*(.+?)\s*-->\s*(.+?)\s*$`)

type diagramEdge struct {
	From     string
	Relation string
	To       string
}

// diagram renders a collection's entities/relationships or workflow steps
// as a Mermaid or PlantUML diagram. It asks the fast LLM for a structured
// edge list via the existing domain_model/workflows prompts, parses the
// edges deterministically, and renders them with text/template — the LLM
// never sees or produces diagram syntax directly.
type diagram struct {
	resources *resources.Registry
	engine    *retrieval.Engine
}

// NewDiagram builds the diagram-generation component. Run's params accept
// "collection" (required), "type" (class|sequence|architecture, default
// class), and "format" (mermaid|plantuml, default mermaid).
func NewDiagram(res *resources.Registry, engine *retrieval.Engine) (registry.Component, error) {
	return &diagram{resources: res, engine: engine}, nil
}

func (c *diagram) Run(ctx context.Context, params map[string]string) (string, error) {
	collection := params["collection"]
	if collection == "" {
		return "", fmt.Errorf("analysis: diagram requires a collection parameter")
	}
	diagramType := params["type"]
	if diagramType == "" {
		diagramType = "class"
	}
	format := params["format"]
	if format == "" {
		format = "mermaid"
	}

	key, query := prompts.DomainModel, "domain entities, classes, and their relationships"
	if diagramType == "sequence" {
		key, query = prompts.Workflows, "end-to-end request workflow and component interactions"
	}

	chunks, err := c.engine.Retrieve(ctx, query, collection, defaultRetrieveK)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("analysis: no content indexed for %s", collection)
	}

	prompt, err := c.resources.Prompts().Render(key, map[string]interface{}{"Chunks": chunks})
	if err != nil {
		return "", err
	}
	completion, err := c.resources.LLM(llm.KindFast).Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	edges := parseEdges(completion)
	if len(edges) == 0 {
		return "", fmt.Errorf("analysis: could not extract a diagram from %s's indexed content", collection)
	}

	templateName := format + "_" + diagramType
	if diagramType != "sequence" {
		templateName = format + "_class" // architecture reuses the class-diagram layout
	}
	tmpl := diagramTemplates.Lookup(templateName + ".tmpl")
	if tmpl == nil {
		return "", fmt.Errorf("analysis: no %s %s diagram template", format, diagramType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]interface{}{"Edges": edges}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func parseEdges(text string) []diagramEdge {
	var edges []diagramEdge
	for _, line := range strings.Split(text, "\n") {
		m := edgeLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		edges = append(edges, diagramEdge{From: m[1], Relation: m[2], To: m[3]})
	}
	return edges
}
