package api

import (
	"time"

	"panwatch/internal/service/version"
	"panwatch/pkg/web"

	"github.com/labstack/echo/v4"
)

// SystemHandler serves health and update-check endpoints.
type SystemHandler struct {
	checker *version.Checker
	version string
	started time.Time
}

func NewSystemHandler(checker *version.Checker, appVersion string) *SystemHandler {
	return &SystemHandler{
		checker: checker,
		version: appVersion,
		started: time.Now(),
	}
}

func (h *SystemHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/api/system/health", h.Health)
	e.GET("/api/system/version", h.Version)
}

func (h *SystemHandler) Health(c echo.Context) error {
	return web.SuccessResponse(c, map[string]any{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

func (h *SystemHandler) Version(c echo.Context) error {
	status := h.checker.Check(c.Request().Context(), h.version)
	return web.SuccessResponse(c, status)
}
