package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/pkg/cache"
	"panwatch/pkg/logger"
	"panwatch/pkg/metrics"
)

type fakeStockLookup struct {
	stocks map[string]*models.Stock
}

func (f *fakeStockLookup) GetBySymbol(_ context.Context, symbol string) (*models.Stock, error) {
	if st, ok := f.stocks[symbol]; ok {
		return st, nil
	}
	return nil, domrepo.ErrNotFound
}

type fakeSuggestionLookup struct {
	suggestions map[string]*models.AgentSuggestion
}

func (f *fakeSuggestionLookup) ListBySymbol(_ context.Context, symbol string, limit int, _ time.Time) ([]models.AgentSuggestion, error) {
	sg, ok := f.suggestions[symbol]
	if !ok || limit < 1 {
		return nil, nil
	}
	return []models.AgentSuggestion{*sg}, nil
}

func (f *fakeSuggestionLookup) LatestBySymbol(_ context.Context, symbol string, now time.Time) (*models.AgentSuggestion, error) {
	sg, ok := f.suggestions[symbol]
	if !ok {
		return nil, domrepo.ErrNotFound
	}
	out := *sg
	out.Expired = now.After(out.ExpiresAt)
	return &out, nil
}

type fakeQuotes struct {
	quotes map[string]models.Quote
	err    error
	calls  atomic.Int64
}

func (f *fakeQuotes) BatchQuotes(_ context.Context, stocks []models.Stock) (map[string]models.Quote, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]models.Quote)
	for _, st := range stocks {
		if q, ok := f.quotes[st.Symbol]; ok {
			out[st.Symbol] = q
		}
	}
	return out, nil
}

type fakeSummaries struct {
	summaries map[string]models.TechnicalSummary
	err       error
	calls     atomic.Int64
}

func (f *fakeSummaries) Summary(_ context.Context, symbol string, _ models.Market) (models.TechnicalSummary, error) {
	f.calls.Add(1)
	if f.err != nil {
		return models.TechnicalSummary{}, f.err
	}
	return f.summaries[symbol], nil
}

func newInsightsFixture(t *testing.T, stocks *fakeStockLookup, sugs *fakeSuggestionLookup, quotes *fakeQuotes, summaries *fakeSummaries) *InsightsUseCase {
	t.Helper()
	mem := cache.NewMemory(0)
	t.Cleanup(mem.Close)
	log, err := logger.New(&logger.Config{Level: "error", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewInsightsUseCase(stocks, sugs, quotes, summaries, mem, metrics.NewRecorder(), log)
}

func qty(v int64) *int64 { return &v }

func TestInsightsBatchAssemblesAllParts(t *testing.T) {
	now := time.Now().UTC()
	uc := newInsightsFixture(t,
		&fakeStockLookup{stocks: map[string]*models.Stock{
			"sh600519": {Symbol: "sh600519", Market: models.MarketCN, Quantity: qty(100)},
		}},
		&fakeSuggestionLookup{suggestions: map[string]*models.AgentSuggestion{
			"sh600519": {Symbol: "sh600519", Label: "hold", ExpiresAt: now.Add(time.Hour)},
		}},
		&fakeQuotes{quotes: map[string]models.Quote{
			"sh600519": {Symbol: "sh600519", CurrentPrice: 1500},
		}},
		&fakeSummaries{summaries: map[string]models.TechnicalSummary{
			"sh600519": {Trend: "bullish alignment", RSIStatus: "RSI strong"},
		}},
	)

	out, err := uc.Batch(context.Background(), models.InsightsBatchRequest{
		Items: []models.InsightQuery{{Symbol: "sh600519", Market: "CN"}},
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(out))
	}

	in := out[0]
	if in.Quote == nil || in.Quote.CurrentPrice != 1500 {
		t.Fatalf("quote missing: %+v", in.Quote)
	}
	if in.Summary == nil || in.Summary.Trend != "bullish alignment" {
		t.Fatalf("summary missing: %+v", in.Summary)
	}
	if in.Advice == nil {
		t.Fatal("advice missing")
	}
	// +2 bullish trend, +1 RSI strong; holding with score 3 means add.
	if in.Advice.Score != 3 || in.Advice.Action != models.ActionAdd {
		t.Fatalf("advice wrong: %+v", in.Advice)
	}
	if in.Suggestion == nil || in.Suggestion.Label != "hold" {
		t.Fatalf("suggestion missing: %+v", in.Suggestion)
	}
	if in.Errors != nil {
		t.Fatalf("unexpected errors: %v", in.Errors)
	}
}

func TestInsightsBatchPartialFailures(t *testing.T) {
	uc := newInsightsFixture(t,
		&fakeStockLookup{},
		&fakeSuggestionLookup{},
		&fakeQuotes{err: errors.New("feed down")},
		&fakeSummaries{err: errors.New("indicator down")},
	)

	out, err := uc.Batch(context.Background(), models.InsightsBatchRequest{
		Items: []models.InsightQuery{{Symbol: "sh600519", Market: "CN"}},
	})
	if err != nil {
		t.Fatalf("batch should not fail wholesale: %v", err)
	}

	in := out[0]
	if in.Quote != nil || in.Summary != nil || in.Advice != nil {
		t.Fatalf("parts should be nil on failure: %+v", in)
	}
	if in.Errors["quote"] == "" || in.Errors["kline_summary"] == "" {
		t.Fatalf("errors not recorded: %v", in.Errors)
	}
}

func TestInsightsBatchNotHoldingUsesWatchThresholds(t *testing.T) {
	uc := newInsightsFixture(t,
		&fakeStockLookup{}, // symbol not on the watchlist
		&fakeSuggestionLookup{},
		&fakeQuotes{},
		&fakeSummaries{summaries: map[string]models.TechnicalSummary{
			"sz000001": {Trend: "bearish alignment"},
		}},
	)

	out, err := uc.Batch(context.Background(), models.InsightsBatchRequest{
		Items: []models.InsightQuery{{Symbol: "sz000001", Market: "CN"}},
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	// Score -2, not holding: avoid (threshold <= -2).
	if out[0].Advice == nil || out[0].Advice.Action != models.ActionAvoid {
		t.Fatalf("advice wrong: %+v", out[0].Advice)
	}
}

func TestInsightsBatchExpiredSuggestionOmitted(t *testing.T) {
	now := time.Now().UTC()
	uc := newInsightsFixture(t,
		&fakeStockLookup{},
		&fakeSuggestionLookup{suggestions: map[string]*models.AgentSuggestion{
			"sh600519": {Symbol: "sh600519", Label: "buy", ExpiresAt: now.Add(-time.Hour)},
		}},
		&fakeQuotes{},
		&fakeSummaries{},
	)

	out, err := uc.Batch(context.Background(), models.InsightsBatchRequest{
		Items: []models.InsightQuery{{Symbol: "sh600519", Market: "CN"}},
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if out[0].Suggestion != nil {
		t.Fatalf("expired suggestion should be omitted: %+v", out[0].Suggestion)
	}
}

func TestInsightsSummaryCaching(t *testing.T) {
	summaries := &fakeSummaries{summaries: map[string]models.TechnicalSummary{
		"sh600519": {Trend: "bullish alignment"},
	}}
	uc := newInsightsFixture(t, &fakeStockLookup{}, &fakeSuggestionLookup{}, &fakeQuotes{}, summaries)

	req := models.InsightsBatchRequest{
		Items: []models.InsightQuery{{Symbol: "sh600519", Market: "CN"}},
	}
	for i := 0; i < 3; i++ {
		if _, err := uc.Batch(context.Background(), req); err != nil {
			t.Fatalf("batch %d: %v", i, err)
		}
	}
	if got := summaries.calls.Load(); got != 1 {
		t.Fatalf("summary fetched %d times, want 1 (cached)", got)
	}
}

func TestInsightsBatchGroupsQuotesByMarket(t *testing.T) {
	quotes := &fakeQuotes{quotes: map[string]models.Quote{}}
	uc := newInsightsFixture(t, &fakeStockLookup{}, &fakeSuggestionLookup{}, quotes, &fakeSummaries{})

	_, err := uc.Batch(context.Background(), models.InsightsBatchRequest{
		Items: []models.InsightQuery{
			{Symbol: "sh600519", Market: "CN"},
			{Symbol: "sz000001", Market: "CN"},
			{Symbol: "00700", Market: "HK"},
		},
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	// Two markets, two upstream calls.
	if got := quotes.calls.Load(); got != 2 {
		t.Fatalf("quote calls = %d, want 2", got)
	}
}

func TestInsightsBatchPreservesOrder(t *testing.T) {
	uc := newInsightsFixture(t, &fakeStockLookup{}, &fakeSuggestionLookup{}, &fakeQuotes{}, &fakeSummaries{})

	items := []models.InsightQuery{
		{Symbol: "c", Market: "CN"},
		{Symbol: "a", Market: "CN"},
		{Symbol: "b", Market: "HK"},
	}
	out, err := uc.Batch(context.Background(), models.InsightsBatchRequest{Items: items})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	for i, item := range items {
		if out[i].Symbol != item.Symbol {
			t.Fatalf("order not preserved at %d: got %s want %s", i, out[i].Symbol, item.Symbol)
		}
	}
}
