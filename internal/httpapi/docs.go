package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/graphextract"
	"github.com/fyrsmithlabs/ctxsearch/internal/reader"
)

const maxPatternResponseChars = 2000

type docsIndexRequest struct {
	LibraryName string `json:"library_name"`
	DocsPath    string `json:"docs_path"`
}

func (s *Server) handleDocsIndex(c echo.Context) error {
	var req docsIndexRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.LibraryName == "" || req.DocsPath == "" {
		return badRequest(c, "library_name and docs_path are required")
	}

	ctx := c.Request().Context()
	docs, err := reader.NewDirectoryReader(config.IndexingConfig{Recursive: true}).LoadDocuments(ctx, req.DocsPath)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}

	collection := s.docsCollection(req.LibraryName)
	vectorSize := s.resources.Embedder().Dimensions()
	if err := s.store.Create(ctx, collection, config.IndexModeVector, vectorSize, graphextract.BusinessContent); err != nil {
		return errorResponseWithStatus(c, err)
	}
	nodes := s.router.SplitDocuments(docs)
	if _, err := s.store.Write(ctx, collection, nodes); err != nil {
		return errorResponseWithStatus(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"indexed":    true,
		"library":    req.LibraryName,
		"collection": collection,
	})
}

type docsSearchRequest struct {
	Query        string `json:"query"`
	Library      string `json:"library"`
	ExamplesOnly bool   `json:"examples_only"`
}

func (s *Server) handleDocsSearch(c echo.Context) error {
	var req docsSearchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Query == "" || req.Library == "" {
		return badRequest(c, "query and library are required")
	}

	query := req.Query
	if req.ExamplesOnly {
		query = "code example: " + query
	}

	result, err := s.engine.Search(c.Request().Context(), query, s.docsCollection(req.Library), 5)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"result": result})
}

func (s *Server) handleDocsLibraries(c echo.Context) error {
	collections, err := s.resources.VectorClient().ListCollections(c.Request().Context())
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	libraries := make([]string, 0, len(collections))
	for _, name := range collections {
		if lib, ok := strings.CutPrefix(name, "docs_"); ok {
			libraries = append(libraries, lib)
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"libraries": libraries})
}

func (s *Server) handleDocsLibrary(c echo.Context) error {
	library := c.Param("library")
	stats, err := s.store.Stats(c.Request().Context(), s.docsCollection(library))
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleDocsPattern(c echo.Context) error {
	query := c.QueryParam("query")
	framework := c.QueryParam("framework")
	if query == "" || framework == "" {
		return badRequest(c, "query and framework are required")
	}

	result, err := s.engine.Search(c.Request().Context(), query, s.docsCollection(framework), 5)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	if len(result) > maxPatternResponseChars {
		result = result[:maxPatternResponseChars] + "..."
	}
	return c.JSON(http.StatusOK, map[string]string{"result": result})
}

func (s *Server) handleDocsIndexFramework(c echo.Context) error {
	framework := c.QueryParam("framework")
	url := c.QueryParam("url")
	if framework == "" || url == "" {
		return badRequest(c, "framework and url are required")
	}

	ctx := c.Request().Context()
	docs, err := reader.NewWebCrawlReader(s.cfg.CrawlDepth).LoadDocuments(ctx, url)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}

	collection := s.docsCollection(framework)
	vectorSize := s.resources.Embedder().Dimensions()
	if err := s.store.Create(ctx, collection, config.IndexModeVector, vectorSize, graphextract.BusinessContent); err != nil {
		return errorResponseWithStatus(c, err)
	}
	nodes := s.router.SplitDocuments(docs)
	if _, err := s.store.Write(ctx, collection, nodes); err != nil {
		return errorResponseWithStatus(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"indexed":    true,
		"framework":  framework,
		"collection": collection,
	})
}

func (s *Server) handleDocsFrameworks(c echo.Context) error {
	return s.handleDocsLibraries(c)
}
