// Package web serves the embedded browser chat UI.
package web

import (
	"embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static/index.html
var static embed.FS

// RegisterRoutes serves the chat page at /.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", Index)
}

// Index renders the chat page.
func Index(c echo.Context) error {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "chat page missing")
	}
	return c.HTMLBlob(http.StatusOK, page)
}
