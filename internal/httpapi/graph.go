package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleGraph(c echo.Context) error {
	project := c.Param("project")
	triplets, err := s.store.Triplets(c.Request().Context(), s.collection(project))
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"project": project, "triplets": triplets})
}

// handleGraphExport returns the same triplets as handleGraph; kept as a
// distinct route since exports may gain a different encoding later
// (DOT, GraphML) without disturbing the plain JSON view.
func (s *Server) handleGraphExport(c echo.Context) error {
	return s.handleGraph(c)
}

func (s *Server) handleGraphVisualize(c echo.Context) error {
	project := c.Param("project")
	format := c.QueryParam("format")
	if format == "" {
		format = "mermaid"
	}

	component, err := s.Component("diagram")
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	diagram, err := component.Run(c.Request().Context(), map[string]string{
		"collection": s.collection(project),
		"type":       "architecture",
		"format":     format,
	})
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	return c.String(http.StatusOK, diagram)
}
