package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/ctxsearch/internal/reader"
)

func (s *Server) handleViolations(c echo.Context) error {
	project := c.Param("project")
	findings, err := s.engine.FindViolations(c.Request().Context(), s.collection(project))
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"violations": findings})
}

func (s *Server) handleArchitecture(c echo.Context) error {
	project := c.Param("project")
	language := c.QueryParam("language")

	items, compliant, err := s.engine.ComplianceReport(c.Request().Context(), s.collection(project), language)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"project":             project,
		"language":            language,
		"architecture_issues": items,
		"compliant":           compliant,
	})
}

type overviewRequest struct {
	ProjectPath string   `json:"project_path"`
	Include     []string `json:"include"`
}

// handleOverview builds a best-effort structural summary of project_path
// without requiring it to be indexed first: it reads the directory
// directly, since an un-indexed path has no collection for the retrieval
// engine to query. It lists the files found and names the first ten as
// important_files; no LLM is called, so patterns and violations are always
// empty lists.
func (s *Server) handleOverview(c echo.Context) error {
	var req overviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.ProjectPath == "" {
		return badRequest(c, "project_path is required")
	}

	ctx := c.Request().Context()
	docs, err := reader.NewDirectoryReader(s.cfg.Indexing).LoadDocuments(ctx, req.ProjectPath)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}

	files := make([]string, 0, len(docs))
	for _, d := range docs {
		files = append(files, d.ID)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"structure":       files,
		"patterns":        []string{},
		"violations":      []string{},
		"important_files": topFiles(files, 10),
	})
}

func topFiles(files []string, n int) []string {
	if len(files) <= n {
		return files
	}
	return files[:n]
}
