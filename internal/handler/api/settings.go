package api

import (
	"panwatch/internal/domain/models"
	"panwatch/internal/usecase"
	"panwatch/pkg/web"

	"github.com/labstack/echo/v4"
)

// SettingsHandler serves the dashboard settings page.
type SettingsHandler struct {
	settings *usecase.SettingsUseCase
}

func NewSettingsHandler(settings *usecase.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/settings")
	g.GET("", h.List)
	g.PUT("/:key", h.Update)
}

func (h *SettingsHandler) List(c echo.Context) error {
	settings, err := h.settings.List(c.Request().Context())
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, settings)
}

func (h *SettingsHandler) Update(c echo.Context) error {
	var req models.SettingUpdateRequest
	if errs := web.BindAndValidate(c, &req); errs != nil {
		return web.BadRequestResponse(c, errs)
	}

	setting, err := h.settings.Update(c.Request().Context(), c.Param("key"), req)
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, setting)
}
