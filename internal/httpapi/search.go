package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type searchRequest struct {
	Query   string `json:"query"`
	Project string `json:"project"`
	Limit   int    `json:"limit"`
}

func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Query == "" || req.Project == "" {
		return badRequest(c, "query and project are required")
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	result, err := s.engine.Search(c.Request().Context(), req.Query, s.collection(req.Project), req.Limit)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"result": result})
}

func (s *Server) handleSmartQuery(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return badRequest(c, "query is required")
	}

	collections, err := s.resources.VectorClient().ListCollections(c.Request().Context())
	if err != nil {
		return errorResponseWithStatus(c, err)
	}

	result, err := s.engine.SmartQuery(c.Request().Context(), query, collections)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"query": query, "result": result})
}

func (s *Server) handleExists(c echo.Context) error {
	component := c.QueryParam("component")
	project := c.QueryParam("project")
	if component == "" || project == "" {
		return badRequest(c, "component and project are required")
	}

	result, err := s.engine.Exists(c.Request().Context(), component, s.collection(project))
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type complexRequest struct {
	Query   string `json:"query"`
	Project string `json:"project"`
}

func (s *Server) handleComplex(c echo.Context) error {
	var req complexRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Query == "" {
		return badRequest(c, "query is required")
	}

	var collections []string
	if req.Project != "" {
		collections = []string{s.collection(req.Project)}
	} else {
		var err error
		collections, err = s.resources.VectorClient().ListCollections(c.Request().Context())
		if err != nil {
			return errorResponseWithStatus(c, err)
		}
	}

	response, err := s.engine.AnswerComplex(c.Request().Context(), req.Query, collections)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"query":    req.Query,
		"project":  req.Project,
		"response": response,
	})
}

// handleCheckViolation looks up whether (action, context) matches a known
// anti-pattern. Delegates straight to Engine.Search, whose own cache-first
// path is what keeps a repeated pair under 100ms — no separate cache
// handling needed here.
func (s *Server) handleCheckViolation(c echo.Context) error {
	action := c.QueryParam("action")
	queryContext := c.QueryParam("context")
	if action == "" {
		return badRequest(c, "action is required")
	}

	ctx := c.Request().Context()
	probe := action + " " + queryContext
	collection := s.docsCollection("anti_patterns")

	_, hit := s.resources.Cache().GetQuery(ctx, probe, 1, collection)

	violation, err := s.engine.Search(ctx, probe, collection, 1)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"violation": nil,
			"cached":    false,
			"action":    action,
			"context":   queryContext,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"violation": violation,
		"cached":    hit,
		"action":    action,
		"context":   queryContext,
	})
}

// handleAnalyzeComponent is the generic entry point onto the
// ComponentRegistry for components with no dedicated route of their own
// (business_rules, domain_model, workflows, api_contracts,
// library_suggest) — query params become the component's params verbatim.
func (s *Server) handleAnalyzeComponent(c echo.Context) error {
	name := c.Param("name")
	component, err := s.Component(name)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}

	params := make(map[string]string, len(c.QueryParams()))
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	if project := params["project"]; project != "" {
		params["collection"] = s.collection(project)
	}

	result, err := component.Run(c.Request().Context(), params)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"component": name, "result": result})
}
