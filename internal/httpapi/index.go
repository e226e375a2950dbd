package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/ctxsearch/internal/config"
	"github.com/fyrsmithlabs/ctxsearch/internal/graphextract"
	"github.com/fyrsmithlabs/ctxsearch/internal/reader"
)

type indexRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Mode string `json:"mode"`
}

func (s *Server) handleIndex(c echo.Context) error {
	var req indexRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Path == "" || req.Name == "" {
		return badRequest(c, "path and name are required")
	}

	mode := config.IndexMode(req.Mode)
	if mode == "" {
		mode = s.cfg.IndexMode
	}

	ctx := c.Request().Context()
	docs, err := reader.NewDirectoryReader(s.cfg.Indexing).LoadDocuments(ctx, req.Path)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	if len(docs) == 0 {
		return c.JSON(http.StatusOK, map[string]string{"error": "No documents found"})
	}

	collection := s.collection(req.Name)
	vectorSize := s.resources.Embedder().Dimensions()
	if err := s.store.Create(ctx, collection, mode, vectorSize, graphextract.CodeContent); err != nil {
		return errorResponseWithStatus(c, err)
	}

	nodes := s.router.SplitDocuments(docs)
	if _, err := s.store.Write(ctx, collection, nodes); err != nil {
		return errorResponseWithStatus(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"indexed":    true,
		"mode":       mode,
		"collection": collection,
	})
}

type refreshRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

func (s *Server) handleRefreshProject(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Path == "" || req.Name == "" {
		return badRequest(c, "path and name are required")
	}

	ctx := c.Request().Context()
	docs, err := reader.NewDirectoryReader(s.cfg.Indexing).LoadDocuments(ctx, req.Path)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}

	collection := s.collection(req.Name)
	result, err := s.store.Refresh(ctx, collection, docs, s.router)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"refreshed":  result.Refreshed,
		"total":      result.Total,
		"unchanged":  result.Unchanged,
		"collection": collection,
	})
}

type indexConversationsRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

func (s *Server) handleIndexConversations(c echo.Context) error {
	var req indexConversationsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Path == "" || req.Name == "" {
		return badRequest(c, "path and name are required")
	}

	ctx := c.Request().Context()
	docs, err := reader.NewConversationReader(s.resources.Logger()).LoadDocuments(ctx, req.Path)
	if err != nil {
		return errorResponseWithStatus(c, err)
	}
	if len(docs) == 0 {
		return c.JSON(http.StatusOK, map[string]string{"error": "No documents found"})
	}

	collection := s.collection(req.Name)
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
		"collection": collection,
	})
}
