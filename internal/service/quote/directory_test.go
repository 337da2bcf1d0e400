package quote

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"panwatch/internal/domain/models"
	"panwatch/pkg/cache"
	"panwatch/pkg/logger"
	"panwatch/pkg/metrics"
)

func seededDirectory(t *testing.T, stocks []models.StockListItem) *Directory {
	t.Helper()
	mem := cache.NewMemory(0)
	t.Cleanup(mem.Close)

	raw, err := json.Marshal(stocks)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := mem.Set(context.Background(), directoryCacheKey, raw, time.Hour); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	log, err := logger.New(&logger.Config{Level: "error", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewDirectory("http://unused.invalid", time.Second, mem, metrics.NewRecorder(), log)
}

func TestDirectorySearchRanking(t *testing.T) {
	d := seededDirectory(t, []models.StockListItem{
		{Symbol: "600519", Name: "Kweichow Moutai", Market: models.MarketCN},
		{Symbol: "000858", Name: "Wuliangye", Market: models.MarketCN},
		{Symbol: "519600", Name: "Unrelated Fund", Market: models.MarketCN},
		{Symbol: "300600", Name: "Moutai Flavor Tech", Market: models.MarketCN},
	})
	ctx := context.Background()

	// Symbol prefix beats name match beats symbol substring.
	got, err := d.Search(ctx, "600", models.MarketCN, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d: %+v", len(got), got)
	}
	if got[0].Symbol != "600519" {
		t.Fatalf("prefix match should rank first, got %q", got[0].Symbol)
	}

	got, err = d.Search(ctx, "moutai", "", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 name matches, got %d", len(got))
	}
}

func TestDirectorySearchLimitsAndFilters(t *testing.T) {
	stocks := make([]models.StockListItem, 0, 30)
	for i := 0; i < 30; i++ {
		stocks = append(stocks, models.StockListItem{
			Symbol: "600" + string(rune('0'+i%10)) + "00",
			Name:   "Stock",
			Market: models.MarketCN,
		})
	}
	d := seededDirectory(t, stocks)
	ctx := context.Background()

	got, err := d.Search(ctx, "600", models.MarketCN, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("limit not applied: %d", len(got))
	}

	got, err = d.Search(ctx, "600", models.MarketUS, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("market filter not applied: %d", len(got))
	}

	got, err = d.Search(ctx, "   ", models.MarketCN, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("blank query should return nothing, got %d", len(got))
	}
}
