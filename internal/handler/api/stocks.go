package api

import (
	"panwatch/internal/domain/models"
	"panwatch/internal/usecase"
	"panwatch/pkg/web"

	"github.com/labstack/echo/v4"
)

// StocksHandler serves the watchlist CRUD, symbol search, and per-stock
// agent bindings.
type StocksHandler struct {
	watchlist *usecase.WatchlistUseCase
	agents    *usecase.AgentsUseCase
}

func NewStocksHandler(watchlist *usecase.WatchlistUseCase, agents *usecase.AgentsUseCase) *StocksHandler {
	return &StocksHandler{watchlist: watchlist, agents: agents}
}

func (h *StocksHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/stocks")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/search", h.Search)
	g.POST("/search/refresh", h.RefreshDirectory)
	g.GET("/:symbol", h.Get)
	g.PUT("/:symbol", h.Update)
	g.DELETE("/:symbol", h.Delete)
	g.PUT("/:symbol/agents", h.UpdateAgents)
	g.POST("/:symbol/agents/:agent/trigger", h.TriggerAgent)
}

func (h *StocksHandler) List(c echo.Context) error {
	stocks, err := h.watchlist.List(c.Request().Context())
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, stocks)
}

func (h *StocksHandler) Create(c echo.Context) error {
	var req models.StockCreateRequest
	if errs := web.BindAndValidate(c, &req); errs != nil {
		return web.BadRequestResponse(c, errs)
	}

	stock, err := h.watchlist.Create(c.Request().Context(), req)
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.CreatedResponse(c, stock)
}

func (h *StocksHandler) Get(c echo.Context) error {
	stock, err := h.watchlist.Get(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, stock)
}

func (h *StocksHandler) Update(c echo.Context) error {
	var req models.StockUpdateRequest
	if errs := web.BindAndValidate(c, &req); errs != nil {
		return web.BadRequestResponse(c, errs)
	}

	stock, err := h.watchlist.Update(c.Request().Context(), c.Param("symbol"), req)
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, stock)
}

func (h *StocksHandler) Delete(c echo.Context) error {
	if err := h.watchlist.Delete(c.Request().Context(), c.Param("symbol")); err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, nil)
}

func (h *StocksHandler) UpdateAgents(c echo.Context) error {
	var req models.StockAgentsUpdateRequest
	if errs := web.BindAndValidate(c, &req); errs != nil {
		return web.BadRequestResponse(c, errs)
	}

	stock, err := h.watchlist.UpdateAgents(c.Request().Context(), c.Param("symbol"), req)
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, stock)
}

// TriggerAgent runs one agent for one stock immediately.
func (h *StocksHandler) TriggerAgent(c echo.Context) error {
	run, err := h.agents.TriggerForStock(c.Request().Context(), c.Param("agent"), c.Param("symbol"))
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, run)
}

func (h *StocksHandler) Search(c echo.Context) error {
	var req models.StockSearchRequest
	if errs := web.BindAndValidate(c, &req); errs != nil {
		return web.BadRequestResponse(c, errs)
	}

	items, err := h.watchlist.Search(c.Request().Context(), req)
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, items)
}

func (h *StocksHandler) RefreshDirectory(c echo.Context) error {
	count, err := h.watchlist.RefreshDirectory(c.Request().Context())
	if err != nil {
		return web.AppErrorResponse(c, err)
	}
	return web.SuccessResponse(c, map[string]int{"count": count})
}
