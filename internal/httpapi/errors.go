package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
)

// errorResponseWithStatus writes {error: message} at the status
// apperr.ToHTTPStatus maps err's Kind to.
func errorResponseWithStatus(c echo.Context, err error) error {
	return c.JSON(apperr.ToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}
