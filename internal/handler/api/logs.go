package api

import (
	"panwatch/internal/domain/models"
	"panwatch/internal/usecase"
	"panwatch/pkg/web"

	"github.com/labstack/echo/v4"
)

// LogsHandler serves the log center.
type LogsHandler struct {
	logs *usecase.LogsUseCase
}

func NewLogsHandler(logs *usecase.LogsUseCase) *LogsHandler {
	return &LogsHandler{logs: logs}
}

func (h *LogsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/logs")
	g.GET("", h.Query)
	g.DELETE("", h.Clear)
}

func (h *LogsHandler) Query(c echo.Context) error {
	var req models.LogsQueryRequest
	if errs := web.BindAndValidate(c, &req); errs != nil {
		return web.BadRequestResponse(c, errs)
	}

	page, err := h.logs.Query(c.Request().Context(), req)
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.ListResponse(c, page.Items, page.Total)
}

func (h *LogsHandler) Clear(c echo.Context) error {
	if err := h.logs.Clear(c.Request().Context()); err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, nil)
}
