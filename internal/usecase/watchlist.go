package usecase

import (
	"context"
	"errors"
	"fmt"

	"panwatch/internal/agent"
	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/internal/service/quote"
	"panwatch/pkg/logger"
	"panwatch/pkg/web"
)

const searchResultLimit = 20

// Reloader re-registers scheduled jobs after binding or config edits.
type Reloader interface {
	Reload(ctx context.Context) error
}

// WatchlistUseCase owns the stock list and its agent bindings.
type WatchlistUseCase struct {
	stocks    domrepo.StockStore
	directory *quote.Directory
	registry  *agent.Registry
	reloader  Reloader
	log       *logger.Logger
}

func NewWatchlistUseCase(stocks domrepo.StockStore, directory *quote.Directory, registry *agent.Registry, reloader Reloader, log *logger.Logger) *WatchlistUseCase {
	return &WatchlistUseCase{
		stocks:    stocks,
		directory: directory,
		registry:  registry,
		reloader:  reloader,
		log:       log.Named("watchlist"),
	}
}

func (uc *WatchlistUseCase) Create(ctx context.Context, req models.StockCreateRequest) (*models.Stock, error) {
	if _, err := uc.stocks.GetBySymbol(ctx, req.Symbol); err == nil {
		return nil, web.ConflictErrorf("stock %s already exists", req.Symbol)
	} else if !errors.Is(err, domrepo.ErrNotFound) {
		return nil, fmt.Errorf("check existing: %w", err)
	}

	stock, err := uc.stocks.Create(ctx, &models.Stock{
		Symbol:    req.Symbol,
		Name:      req.Name,
		Market:    models.Market(req.Market),
		CostPrice: req.CostPrice,
		Quantity:  req.Quantity,
		Enabled:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("create stock: %w", err)
	}
	uc.log.Info("stock added", logger.String("symbol", stock.Symbol))
	return stock, nil
}

func (uc *WatchlistUseCase) List(ctx context.Context) ([]models.Stock, error) {
	stocks, err := uc.stocks.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	return stocks, nil
}

func (uc *WatchlistUseCase) Get(ctx context.Context, symbol string) (*models.Stock, error) {
	stock, err := uc.stocks.GetBySymbol(ctx, symbol)
	if errors.Is(err, domrepo.ErrNotFound) {
		return nil, web.NotFoundErrorf("stock %s not found", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return stock, nil
}

func (uc *WatchlistUseCase) Update(ctx context.Context, symbol string, req models.StockUpdateRequest) (*models.Stock, error) {
	stock, err := uc.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		stock.Name = *req.Name
	}
	if req.CostPrice != nil {
		stock.CostPrice = req.CostPrice
	}
	if req.Quantity != nil {
		stock.Quantity = req.Quantity
	}
	enabledChanged := false
	if req.Enabled != nil && stock.Enabled != *req.Enabled {
		stock.Enabled = *req.Enabled
		enabledChanged = true
	}

	updated, err := uc.stocks.Update(ctx, stock)
	if err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}

	// Toggling enabled changes which stocks the scheduler runs against.
	if enabledChanged {
		uc.reload(ctx)
	}
	return updated, nil
}

func (uc *WatchlistUseCase) Delete(ctx context.Context, symbol string) error {
	err := uc.stocks.Delete(ctx, symbol)
	if errors.Is(err, domrepo.ErrNotFound) {
		return web.NotFoundErrorf("stock %s not found", symbol)
	}
	if err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	uc.log.Info("stock removed", logger.String("symbol", symbol))
	uc.reload(ctx)
	return nil
}

func (uc *WatchlistUseCase) UpdateAgents(ctx context.Context, symbol string, req models.StockAgentsUpdateRequest) (*models.Stock, error) {
	bindings := make([]models.StockAgentBinding, 0, len(req.Agents))
	for _, item := range req.Agents {
		if _, err := uc.registry.Get(item.AgentName); err != nil {
			return nil, web.BadRequestErrorf("unknown agent %s", item.AgentName)
		}
		bindings = append(bindings, models.StockAgentBinding{
			AgentName: item.AgentName,
			Schedule:  item.Schedule,
		})
	}

	err := uc.stocks.ReplaceAgents(ctx, symbol, bindings)
	if errors.Is(err, domrepo.ErrNotFound) {
		return nil, web.NotFoundErrorf("stock %s not found", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("replace agents: %w", err)
	}

	uc.reload(ctx)
	return uc.Get(ctx, symbol)
}

func (uc *WatchlistUseCase) Search(ctx context.Context, req models.StockSearchRequest) ([]models.StockListItem, error) {
	items, err := uc.directory.Search(ctx, req.Q, models.Market(req.Market), searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("search directory: %w", err)
	}
	return items, nil
}

// RefreshDirectory forces a re-download of the symbol directory.
func (uc *WatchlistUseCase) RefreshDirectory(ctx context.Context) (int, error) {
	count, err := uc.directory.Refresh(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh directory: %w", err)
	}
	return count, nil
}

func (uc *WatchlistUseCase) reload(ctx context.Context) {
	if uc.reloader == nil {
		return
	}
	if err := uc.reloader.Reload(ctx); err != nil {
		uc.log.Error("scheduler reload failed", logger.Error(err))
	}
}
