package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"panwatch/internal/advisor"
	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/pkg/cache"
	"panwatch/pkg/logger"
	"panwatch/pkg/metrics"
)

const (
	summaryCacheTTL = 60 * time.Second
	summaryWorkers  = 8
)

// QuoteFetcher supplies live quotes for a batch of stocks.
type QuoteFetcher interface {
	BatchQuotes(ctx context.Context, stocks []models.Stock) (map[string]models.Quote, error)
}

// SummaryFetcher supplies the technical summary for one symbol.
type SummaryFetcher interface {
	Summary(ctx context.Context, symbol string, market models.Market) (models.TechnicalSummary, error)
}

// StockLookup is the slice of StockStore the insights path needs.
type StockLookup interface {
	GetBySymbol(ctx context.Context, symbol string) (*models.Stock, error)
}

// SuggestionLookup is the slice of SuggestionStore the insights path needs.
type SuggestionLookup interface {
	LatestBySymbol(ctx context.Context, symbol string, now time.Time) (*models.AgentSuggestion, error)
	ListBySymbol(ctx context.Context, symbol string, limit int, now time.Time) ([]models.AgentSuggestion, error)
}

// InsightsUseCase aggregates the per-symbol dashboard view: quote,
// technical summary, rule-based advice, and the latest agent suggestion.
// Upstream failures degrade per part instead of failing the batch.
type InsightsUseCase struct {
	stocks      StockLookup
	suggestions SuggestionLookup
	quotes      QuoteFetcher
	summaries   SummaryFetcher
	cache       cache.BytesCache
	recorder    *metrics.Recorder
	log         *logger.Logger
}

func NewInsightsUseCase(
	stocks StockLookup,
	suggestions SuggestionLookup,
	quotes QuoteFetcher,
	summaries SummaryFetcher,
	c cache.BytesCache,
	recorder *metrics.Recorder,
	log *logger.Logger,
) *InsightsUseCase {
	return &InsightsUseCase{
		stocks:      stocks,
		suggestions: suggestions,
		quotes:      quotes,
		summaries:   summaries,
		cache:       c,
		recorder:    recorder,
		log:         log.Named("insights"),
	}
}

// Batch resolves insights for every requested symbol, in request order.
func (uc *InsightsUseCase) Batch(ctx context.Context, req models.InsightsBatchRequest) ([]models.Insight, error) {
	// One quote call per market.
	byMarket := make(map[models.Market][]models.Stock)
	for _, item := range req.Items {
		market := models.Market(item.Market)
		byMarket[market] = append(byMarket[market], models.Stock{
			Symbol: item.Symbol,
			Market: market,
		})
	}

	quoteErrs := make(map[models.Market]error, len(byMarket))
	quotes := make(map[string]models.Quote)
	var quotesMu sync.Mutex
	var quoteWG sync.WaitGroup
	for market, stocks := range byMarket {
		quoteWG.Add(1)
		go func(market models.Market, stocks []models.Stock) {
			defer quoteWG.Done()
			fetched, err := uc.quotes.BatchQuotes(ctx, stocks)
			quotesMu.Lock()
			defer quotesMu.Unlock()
			if err != nil {
				quoteErrs[market] = err
				return
			}
			for symbol, q := range fetched {
				quotes[symbol] = q
			}
		}(market, stocks)
	}
	quoteWG.Wait()

	out := make([]models.Insight, len(req.Items))
	sem := make(chan struct{}, summaryWorkers)
	var wg sync.WaitGroup
	for i, item := range req.Items {
		wg.Add(1)
		go func(i int, item models.InsightQuery) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i] = uc.assemble(ctx, item, quotes, quoteErrs)
		}(i, item)
	}
	wg.Wait()

	return out, nil
}

// SuggestionHistory lists the most recent suggestions for one symbol,
// newest first, including expired ones.
func (uc *InsightsUseCase) SuggestionHistory(ctx context.Context, symbol string, limit int) ([]models.AgentSuggestion, error) {
	suggestions, err := uc.suggestions.ListBySymbol(ctx, symbol, limit, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return suggestions, nil
}

func (uc *InsightsUseCase) assemble(ctx context.Context, item models.InsightQuery, quotes map[string]models.Quote, quoteErrs map[models.Market]error) models.Insight {
	market := models.Market(item.Market)
	insight := models.Insight{
		Symbol: item.Symbol,
		Market: market,
		Errors: map[string]string{},
	}

	if q, ok := quotes[item.Symbol]; ok {
		insight.Quote = &q
	} else if err := quoteErrs[market]; err != nil {
		insight.Errors["quote"] = err.Error()
	} else {
		insight.Errors["quote"] = "no data from feed"
	}

	// Holding status comes from the watchlist; symbols not on it are
	// scored as not holding.
	holding := false
	if stock, err := uc.stocks.GetBySymbol(ctx, item.Symbol); err == nil {
		holding = stock.Holding()
	} else if !errors.Is(err, domrepo.ErrNotFound) {
		uc.log.Warn("stock lookup failed",
			logger.String("symbol", item.Symbol),
			logger.Error(err),
		)
	}

	summary, err := uc.cachedSummary(ctx, item.Symbol, market)
	if err != nil {
		insight.Errors["kline_summary"] = err.Error()
	} else {
		insight.Summary = &summary
		advice := advisor.Score(summary, holding)
		insight.Advice = &advice
		uc.recorder.AdviceScored(string(advice.Action))
	}

	suggestion, err := uc.suggestions.LatestBySymbol(ctx, item.Symbol, time.Now().UTC())
	if err == nil && !suggestion.Expired {
		insight.Suggestion = suggestion
	} else if err != nil && !errors.Is(err, domrepo.ErrNotFound) {
		insight.Errors["suggestion"] = err.Error()
	}

	if len(insight.Errors) == 0 {
		insight.Errors = nil
	}
	return insight
}

func (uc *InsightsUseCase) cachedSummary(ctx context.Context, symbol string, market models.Market) (models.TechnicalSummary, error) {
	key := fmt.Sprintf("summary:%s:%s", market, symbol)
	if raw, err := uc.cache.Get(ctx, key); err == nil {
		var summary models.TechnicalSummary
		if err := json.Unmarshal(raw, &summary); err == nil {
			uc.recorder.InsightServed("hit")
			return summary, nil
		}
	}
	uc.recorder.InsightServed("miss")

	summary, err := uc.summaries.Summary(ctx, symbol, market)
	if err != nil {
		return models.TechnicalSummary{}, err
	}
	if raw, err := json.Marshal(summary); err == nil {
		if err := uc.cache.Set(ctx, key, raw, summaryCacheTTL); err != nil {
			uc.log.Warn("summary cache store failed", logger.Error(err))
		}
	}
	return summary, nil
}
