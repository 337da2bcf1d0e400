package api

import (
	"panwatch/internal/domain/models"
	"panwatch/internal/usecase"
	"panwatch/pkg/web"

	"github.com/labstack/echo/v4"
)

// AgentsHandler serves agent configuration, manual triggers, and run
// history.
type AgentsHandler struct {
	agents *usecase.AgentsUseCase
}

func NewAgentsHandler(agents *usecase.AgentsUseCase) *AgentsHandler {
	return &AgentsHandler{agents: agents}
}

func (h *AgentsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/agents")
	g.GET("", h.List)
	g.PUT("/:name", h.Update)
	g.POST("/:name/trigger", h.Trigger)
	g.GET("/:name/history", h.History)
}

func (h *AgentsHandler) List(c echo.Context) error {
	configs, err := h.agents.List(c.Request().Context())
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, configs)
}

func (h *AgentsHandler) Update(c echo.Context) error {
	var req models.AgentUpdateRequest
	if errs := web.BindAndValidate(c, &req); errs != nil {
		return web.BadRequestResponse(c, errs)
	}

	cfg, err := h.agents.Update(c.Request().Context(), c.Param("name"), req)
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, cfg)
}

func (h *AgentsHandler) Trigger(c echo.Context) error {
	run, err := h.agents.Trigger(c.Request().Context(), c.Param("name"))
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, run)
}

func (h *AgentsHandler) History(c echo.Context) error {
	var req models.AgentHistoryRequest
	if errs := web.BindAndValidate(c, &req); errs != nil {
		return web.BadRequestResponse(c, errs)
	}

	runs, err := h.agents.History(c.Request().Context(), c.Param("name"), req)
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, runs)
}
