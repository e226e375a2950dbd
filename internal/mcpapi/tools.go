package mcpapi

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/graphextract"
	"github.com/fyrsmithlabs/ctxsearch/internal/reader"
)

// registerTools registers every MCP tool with the server.
func (s *Server) registerTools() {
	s.registerSearchTools()
	s.registerIndexTools()
	s.registerDocsTools()
	s.registerAnalysisTools()
}

// ===== SEARCH =====

type searchCodeInput struct {
	Query   string `json:"query" jsonschema:"required,Natural-language search query"`
	Project string `json:"project" jsonschema:"required,Indexed project name"`
	TopK    int    `json:"top_k,omitempty" jsonschema:"Number of source nodes to retrieve (default: 5)"`
}

type searchCodeOutput struct {
	Answer string `json:"answer" jsonschema:"Synthesized answer over the retrieved nodes"`
}

type checkComponentExistsInput struct {
	Component string `json:"component" jsonschema:"required,Component or pattern description to look for"`
	Project   string `json:"project" jsonschema:"required,Indexed project name"`
}

type checkComponentExistsOutput struct {
	Exists     bool    `json:"exists" jsonschema:"True if a matching component was found above the confidence threshold"`
	Confidence float64 `json:"confidence" jsonschema:"Top match's similarity score in [0,1]"`
	Context    string  `json:"context,omitempty" jsonschema:"Supporting context, when found"`
	Error      string  `json:"error,omitempty" jsonschema:"Set when the project is not indexed"`
}

func (s *Server) registerSearchTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_code",
		Description: "Semantic search over an indexed project's source tree, returning a synthesized answer",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args searchCodeInput) (*mcp.CallToolResult, searchCodeOutput, error) {
		k := args.TopK
		if k <= 0 {
			k = 5
		}
		answer, err := s.engine.Search(ctx, args.Query, s.collection(args.Project), k)
		if err != nil {
			return nil, searchCodeOutput{}, err
		}
		return nil, searchCodeOutput{Answer: answer}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "check_component_exists",
		Description: "Check whether a component or pattern already exists in an indexed project",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args checkComponentExistsInput) (*mcp.CallToolResult, checkComponentExistsOutput, error) {
		result, err := s.engine.Exists(ctx, args.Component, s.collection(args.Project))
		if err != nil {
			return nil, checkComponentExistsOutput{}, err
		}
		return nil, checkComponentExistsOutput{
			Exists:     result.Exists,
			Confidence: result.Confidence,
			Context:    result.Context,
			Error:      result.Error,
		}, nil
	})
}

// ===== INDEX =====

type indexProjectInput struct {
	Path string `json:"path" jsonschema:"required,Filesystem path to the project root"`
	Name string `json:"name" jsonschema:"required,Name the project is indexed under"`
	Mode string `json:"mode,omitempty" jsonschema:"Index mode: vector, graph, hybrid, or auto (default: configured default)"`
}

type indexProjectOutput struct {
	Indexed    bool   `json:"indexed"`
	Collection string `json:"collection"`
}

func (s *Server) registerIndexTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_project",
		Description: "Index a project's source tree into the hybrid retrieval store",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args indexProjectInput) (*mcp.CallToolResult, indexProjectOutput, error) {
		mode := config.IndexMode(args.Mode)
		if mode == "" {
			mode = s.cfg.IndexMode
		}

		docs, err := reader.NewDirectoryReader(s.cfg.Indexing).LoadDocuments(ctx, args.Path)
		if err != nil {
			return nil, indexProjectOutput{}, err
		}

		collection := s.collection(args.Name)
		vectorSize := s.resources.Embedder().Dimensions()
		if err := s.store.Create(ctx, collection, mode, vectorSize, graphextract.CodeContent); err != nil {
			return nil, indexProjectOutput{}, err
		}
		nodes := s.router.SplitDocuments(docs)
		if _, err := s.store.Write(ctx, collection, nodes); err != nil {
			return nil, indexProjectOutput{}, err
		}
		return nil, indexProjectOutput{Indexed: true, Collection: collection}, nil
	})
}

// ===== DOCS =====

type indexFrameworkDocsInput struct {
	Framework string `json:"framework" jsonschema:"required,Framework or library name"`
	DocsPath  string `json:"docs_path" jsonschema:"required,Filesystem path to a local docs tree"`
}

type indexDocsURLInput struct {
	Framework string `json:"framework" jsonschema:"required,Framework or library name"`
	URL       string `json:"url" jsonschema:"required,Seed URL to crawl for documentation"`
}

type indexGitHubDocsInput struct {
	Framework string `json:"framework" jsonschema:"required,Framework or library name"`
	Repo      string `json:"repo" jsonschema:"required,GitHub repository, e.g. owner/name"`
	Token     string `json:"token,omitempty" jsonschema:"GitHub API token, for private repositories or higher rate limits"`
}

type indexDocsOutput struct {
	Indexed    bool   `json:"indexed"`
	Framework  string `json:"framework"`
	Collection string `json:"collection"`
}

type listIndexedFrameworksOutput struct {
	Frameworks []string `json:"frameworks"`
}

type queryDocsInput struct {
	Query     string `json:"query" jsonschema:"required,Natural-language documentation query"`
	Framework string `json:"framework" jsonschema:"required,Indexed framework or library name"`
}

type queryDocsOutput struct {
	Answer string `json:"answer" jsonschema:"Synthesized answer over the retrieved documentation"`
}

type getPatternInput struct {
	Query     string `json:"query" jsonschema:"required,Pattern or usage question"`
	Framework string `json:"framework" jsonschema:"required,Indexed framework or library name"`
}

type getPatternOutput struct {
	Pattern string `json:"pattern" jsonschema:"Matched usage pattern, truncated if long"`
}

const maxPatternChars = 2000

func (s *Server) writeDocs(ctx context.Context, framework string, docs []reader.Document) (string, error) {
	collection := s.docsCollection(framework)
	vectorSize := s.resources.Embedder().Dimensions()
	if err := s.store.Create(ctx, collection, config.IndexModeVector, vectorSize, graphextract.BusinessContent); err != nil {
		return "", err
	}
	nodes := s.router.SplitDocuments(docs)
	if _, err := s.store.Write(ctx, collection, nodes); err != nil {
		return "", err
	}
	return collection, nil
}

func (s *Server) registerDocsTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_framework_docs",
		Description: "Index a local documentation tree for a framework or library",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args indexFrameworkDocsInput) (*mcp.CallToolResult, indexDocsOutput, error) {
		docs, err := reader.NewDirectoryReader(s.cfg.Indexing).LoadDocuments(ctx, args.DocsPath)
		if err != nil {
			return nil, indexDocsOutput{}, err
		}
		collection, err := s.writeDocs(ctx, args.Framework, docs)
		if err != nil {
			return nil, indexDocsOutput{}, err
		}
		return nil, indexDocsOutput{Indexed: true, Framework: args.Framework, Collection: collection}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_docs_url",
		Description: "Crawl and index a documentation site starting from a seed URL",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args indexDocsURLInput) (*mcp.CallToolResult, indexDocsOutput, error) {
		docs, err := reader.NewWebCrawlReader(s.cfg.CrawlDepth).LoadDocuments(ctx, args.URL)
		if err != nil {
			return nil, indexDocsOutput{}, err
		}
		collection, err := s.writeDocs(ctx, args.Framework, docs)
		if err != nil {
			return nil, indexDocsOutput{}, err
		}
		return nil, indexDocsOutput{Indexed: true, Framework: args.Framework, Collection: collection}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_github_docs",
		Description: "Index documentation files out of a GitHub repository's tree",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args indexGitHubDocsInput) (*mcp.CallToolResult, indexDocsOutput, error) {
		docs, err := reader.NewGitHubReader(args.Token).LoadDocuments(ctx, args.Repo)
		if err != nil {
			return nil, indexDocsOutput{}, err
		}
		collection, err := s.writeDocs(ctx, args.Framework, docs)
		if err != nil {
			return nil, indexDocsOutput{}, err
		}
		return nil, indexDocsOutput{Indexed: true, Framework: args.Framework, Collection: collection}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_indexed_frameworks",
		Description: "List every framework or library with indexed documentation",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, listIndexedFrameworksOutput, error) {
		collections, err := s.resources.VectorClient().ListCollections(ctx)
		if err != nil {
			return nil, listIndexedFrameworksOutput{}, err
		}
		frameworks := make([]string, 0, len(collections))
		for _, name := range collections {
			if fw, ok := strings.CutPrefix(name, "docs_"); ok {
				frameworks = append(frameworks, fw)
			}
		}
		return nil, listIndexedFrameworksOutput{Frameworks: frameworks}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_docs",
		Description: "Ask a question against an indexed framework's documentation",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args queryDocsInput) (*mcp.CallToolResult, queryDocsOutput, error) {
		answer, err := s.engine.Search(ctx, args.Query, s.docsCollection(args.Framework), 5)
		if err != nil {
			return nil, queryDocsOutput{}, err
		}
		return nil, queryDocsOutput{Answer: answer}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_pattern",
		Description: "Look up a concrete usage pattern or code example in a framework's indexed documentation",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args getPatternInput) (*mcp.CallToolResult, getPatternOutput, error) {
		answer, err := s.engine.Search(ctx, "code example: "+args.Query, s.docsCollection(args.Framework), 5)
		if err != nil {
			return nil, getPatternOutput{}, err
		}
		if len(answer) > maxPatternChars {
			answer = answer[:maxPatternChars] + "..."
		}
		return nil, getPatternOutput{Pattern: answer}, nil
	})
}

// ===== ANALYSIS =====

type findViolationsInput struct {
	Project string `json:"project" jsonschema:"required,Indexed project name"`
}

type findViolationsOutput struct {
	Violations []string `json:"violations"`
}

type suggestLibrariesInput struct {
	Task     string `json:"task" jsonschema:"required,Task the library should help accomplish"`
	Existing string `json:"existing,omitempty" jsonschema:"Comma-separated list of libraries already in use, to avoid duplicating"`
}

type suggestLibrariesOutput struct {
	Suggestion string `json:"suggestion"`
}

func (s *Server) registerAnalysisTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_violations",
		Description: "Scan an indexed project for SOLID/DRY architecture violations",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args findViolationsInput) (*mcp.CallToolResult, findViolationsOutput, error) {
		findings, err := s.engine.FindViolations(ctx, s.collection(args.Project))
		if err != nil {
			return nil, findViolationsOutput{}, err
		}
		return nil, findViolationsOutput{Violations: findings}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "suggest_libraries",
		Description: "Suggest third-party libraries for a task, avoiding ones already in use",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args suggestLibrariesInput) (*mcp.CallToolResult, suggestLibrariesOutput, error) {
		component, err := s.components.Get("library_suggest")
		if err != nil {
			return nil, suggestLibrariesOutput{}, err
		}
		suggestion, err := component.Run(ctx, map[string]string{"task": args.Task, "existing": args.Existing})
		if err != nil {
			return nil, suggestLibrariesOutput{}, err
		}
		return nil, suggestLibrariesOutput{Suggestion: suggestion}, nil
	})
}
