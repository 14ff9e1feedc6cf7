package router

import (
	"github.com/deppfellow/coursehub/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts the health check and the API docs, which
// sit outside /api.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	// openapi.json and the assets the docs page loads.
	r.Static("/static", handler.StaticDir)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
