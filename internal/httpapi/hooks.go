package httpapi

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

const hookFileMode = 0o755

type autoDocsSetupRequest struct {
	ProjectPath string `json:"project_path"`
}

// handleAutoDocsSetup installs two minimal git hooks that shell out to
// this service via curl, so commits automatically trigger indexing and
// refresh without the developer running the CLI by hand.
func (s *Server) handleAutoDocsSetup(c echo.Context) error {
	var req autoDocsSetupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.ProjectPath == "" {
		return badRequest(c, "project_path is required")
	}

	hooksDir := filepath.Join(req.ProjectPath, ".git", "hooks")
	if info, err := os.Stat(hooksDir); err != nil || !info.IsDir() {
		return badRequest(c, "not a git repository: "+req.ProjectPath)
	}

	base := s.baseURL(c)
	project := filepath.Base(req.ProjectPath)

	preCommit := fmt.Sprintf(
		"#!/bin/sh\n"+
			"curl -s -X POST %s/index \\\n"+
			"  -H 'Content-Type: application/json' \\\n"+
			"  -d '{\"path\":\"%s\",\"name\":\"%s\"}' >/dev/null 2>&1 &\n"+
			"exit 0\n",
		base, req.ProjectPath, project)

	postCommit := fmt.Sprintf(
		"#!/bin/sh\n"+
			"curl -s -X POST %s/refresh/project \\\n"+
			"  -H 'Content-Type: application/json' \\\n"+
			"  -d '{\"path\":\"%s\",\"name\":\"%s\"}' >/dev/null 2>&1 &\n"+
			"exit 0\n",
		base, req.ProjectPath, project)

	if err := installHook(hooksDir, "pre-commit", preCommit); err != nil {
		return errorResponseWithStatus(c, err)
	}
	if err := installHook(hooksDir, "post-commit", postCommit); err != nil {
		return errorResponseWithStatus(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"installed": []string{"pre-commit", "post-commit"},
		"project":   project,
	})
}

func installHook(hooksDir, name, body string) error {
	return os.WriteFile(filepath.Join(hooksDir, name), []byte(body), hookFileMode)
}

func (s *Server) baseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
