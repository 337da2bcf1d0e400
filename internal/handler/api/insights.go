package api

import (
	"panwatch/internal/domain/models"
	"panwatch/internal/usecase"
	"panwatch/pkg/web"

	"github.com/labstack/echo/v4"
)

// InsightsHandler serves the aggregated per-symbol dashboard view.
type InsightsHandler struct {
	insights *usecase.InsightsUseCase
}

func NewInsightsHandler(insights *usecase.InsightsUseCase) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

func (h *InsightsHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/insights/batch", h.Batch)
	e.GET("/api/insights/:symbol/suggestions", h.SuggestionHistory)
}

func (h *InsightsHandler) Batch(c echo.Context) error {
	var req models.InsightsBatchRequest
	if errs := web.BindAndValidate(c, &req); errs != nil {
		return web.BadRequestResponse(c, errs)
	}

	insights, err := h.insights.Batch(c.Request().Context(), req)
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, insights)
}

func (h *InsightsHandler) SuggestionHistory(c echo.Context) error {
	var req models.SuggestionHistoryRequest
	if errs := web.BindAndValidate(c, &req); errs != nil {
		return web.BadRequestResponse(c, errs)
	}

	suggestions, err := h.insights.SuggestionHistory(c.Request().Context(), c.Param("symbol"), req.Limit)
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, suggestions)
}
