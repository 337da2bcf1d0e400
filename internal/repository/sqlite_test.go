package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int64) *int64       { return &v }

func TestStockStoreCRUD(t *testing.T) {
	store := NewSQLStockStore(openTestDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, &models.Stock{
		Symbol:    "sh600519",
		Name:      "Kweichow Moutai",
		Market:    models.MarketCN,
		CostPrice: floatPtr(1500),
		Quantity:  intPtr(100),
		Enabled:   true,
		Agents: []models.StockAgentBinding{
			{AgentName: "daily_report", Schedule: "0 30 9 * * *"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if !created.Holding() {
		t.Fatal("expected holding")
	}
	if len(created.Agents) != 1 || created.Agents[0].AgentName != "daily_report" {
		t.Fatalf("agents not persisted: %+v", created.Agents)
	}

	got, err := store.GetBySymbol(ctx, "sh600519")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Kweichow Moutai" || got.Market != models.MarketCN {
		t.Fatalf("unexpected stock: %+v", got)
	}

	got.Quantity = nil
	got.CostPrice = nil
	got.Enabled = false
	updated, err := store.Update(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Holding() {
		t.Fatal("expected not holding after clearing quantity")
	}
	if updated.Enabled {
		t.Fatal("expected disabled")
	}

	all, err := store.List(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 stock, got %d", len(all))
	}
	enabled, err := store.List(ctx, true)
	if err != nil {
		t.Fatalf("list enabled: %v", err)
	}
	if len(enabled) != 0 {
		t.Fatalf("expected no enabled stocks, got %d", len(enabled))
	}

	if err := store.Delete(ctx, "sh600519"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetBySymbol(ctx, "sh600519"); !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "sh600519"); !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStockStoreAgentBindings(t *testing.T) {
	store := NewSQLStockStore(openTestDB(t))
	ctx := context.Background()

	mk := func(symbol string, enabled bool, schedule string) {
		t.Helper()
		_, err := store.Create(ctx, &models.Stock{
			Symbol: symbol, Name: symbol, Market: models.MarketCN, Enabled: enabled,
			Agents: []models.StockAgentBinding{{AgentName: "daily_report", Schedule: schedule}},
		})
		if err != nil {
			t.Fatalf("create %s: %v", symbol, err)
		}
	}
	mk("sh600000", true, "")
	mk("sz000001", true, "0 0 10 * * *")
	mk("sh601398", false, "")

	bindings, err := store.ListAgentBindings(ctx, "daily_report")
	if err != nil {
		t.Fatalf("list bindings: %v", err)
	}
	// Disabled stocks are excluded from scheduling.
	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d: %v", len(bindings), bindings)
	}
	if bindings["sz000001"] != "0 0 10 * * *" {
		t.Fatalf("schedule override lost: %q", bindings["sz000001"])
	}
	if bindings["sh600000"] != "" {
		t.Fatalf("expected empty schedule for default binding, got %q", bindings["sh600000"])
	}

	if err := store.ReplaceAgents(ctx, "sh600000", nil); err != nil {
		t.Fatalf("replace agents: %v", err)
	}
	bindings, err = store.ListAgentBindings(ctx, "daily_report")
	if err != nil {
		t.Fatalf("list bindings: %v", err)
	}
	if _, ok := bindings["sh600000"]; ok {
		t.Fatal("binding should be removed after replace with empty set")
	}
}

func TestAgentStoreSeedAndUpdate(t *testing.T) {
	store := NewSQLAgentStore(openTestDB(t))
	ctx := context.Background()

	seed := []models.AgentConfig{{
		Name:        "daily_report",
		DisplayName: "Daily Report",
		Enabled:     true,
		Schedule:    "0 0 9 * * MON-FRI",
		Config:      map[string]any{"lookback_days": float64(30)},
	}}
	if err := store.SeedConfigs(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg, err := store.GetConfig(ctx, "daily_report")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.Config["lookback_days"] != float64(30) {
		t.Fatalf("config payload lost: %v", cfg.Config)
	}

	cfg.Schedule = "0 30 9 * * *"
	cfg.Enabled = false
	if _, err := store.UpdateConfig(ctx, cfg); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Re-seeding must not clobber user edits.
	if err := store.SeedConfigs(ctx, seed); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	cfg, err = store.GetConfig(ctx, "daily_report")
	if err != nil {
		t.Fatalf("get after reseed: %v", err)
	}
	if cfg.Enabled || cfg.Schedule != "0 30 9 * * *" {
		t.Fatalf("reseed overwrote edits: %+v", cfg)
	}

	if _, err := store.GetConfig(ctx, "nope"); !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAgentStoreRunsPrune(t *testing.T) {
	store := NewSQLAgentStore(openTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := &models.AgentRun{
			ID:        string(rune('a' + i)),
			AgentName: "daily_report",
			Status:    models.RunStatusSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.RecordRun(ctx, run); err != nil {
			t.Fatalf("record run: %v", err)
		}
	}

	if err := store.PruneRuns(ctx, "daily_report", 2); err != nil {
		t.Fatalf("prune: %v", err)
	}
	runs, err := store.ListRuns(ctx, "daily_report", 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs after prune, got %d", len(runs))
	}
	// Newest first.
	if runs[0].ID != "e" || runs[1].ID != "d" {
		t.Fatalf("kept wrong runs: %v, %v", runs[0].ID, runs[1].ID)
	}
}

func TestSettingStore(t *testing.T) {
	store := NewSQLSettingStore(openTestDB(t))
	ctx := context.Background()

	defaults := []models.Setting{
		{Key: "refresh_interval", Value: "30", Description: "Dashboard refresh seconds"},
		{Key: "theme", Value: "dark", Description: "UI theme"},
	}
	if err := store.SeedDefaults(ctx, defaults); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := store.Upsert(ctx, &models.Setting{Key: "theme", Value: "light"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := store.Get(ctx, "theme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Value != "light" {
		t.Fatalf("value = %q, want light", got.Value)
	}
	// Upsert with empty description keeps the seeded one.
	if got.Description != "UI theme" {
		t.Fatalf("description lost: %q", got.Description)
	}

	// Seeding again must not reset edits.
	if err := store.SeedDefaults(ctx, defaults); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	got, err = store.Get(ctx, "theme")
	if err != nil {
		t.Fatalf("get after reseed: %v", err)
	}
	if got.Value != "light" {
		t.Fatalf("reseed overwrote value: %q", got.Value)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 settings, got %d", len(all))
	}
}

func TestSuggestionStoreExpiry(t *testing.T) {
	store := NewSQLSuggestionStore(openTestDB(t))
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := &models.AgentSuggestion{
		Symbol: "sh600519", AgentName: "daily_report", Label: "hold",
		Reason:    "earlier take",
		CreatedAt: now.Add(-48 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	}
	fresh := &models.AgentSuggestion{
		Symbol: "sh600519", AgentName: "daily_report", Label: "buy",
		Reason:    "momentum building",
		CreatedAt: now.Add(-time.Hour),
		ExpiresAt: now.Add(23 * time.Hour),
	}
	for _, sg := range []*models.AgentSuggestion{old, fresh} {
		if _, err := store.Add(ctx, sg); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	latest, err := store.LatestBySymbol(ctx, "sh600519", now)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Label != "buy" || latest.Expired {
		t.Fatalf("unexpected latest: %+v", latest)
	}

	list, err := store.ListBySymbol(ctx, "sh600519", 10, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(list))
	}
	if !list[1].Expired {
		t.Fatal("old suggestion should be marked expired")
	}

	pruned, err := store.PruneExpired(ctx, now)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned, got %d", pruned)
	}

	if _, err := store.LatestBySymbol(ctx, "sz000001", now); !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown symbol, got %v", err)
	}
}

func TestLogStoreQueryAndPrune(t *testing.T) {
	store := NewSQLLogStore(openTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []models.LogEntry{
		{Timestamp: base, Level: "INFO", Logger: "scheduler", Message: "job registered"},
		{Timestamp: base.Add(time.Minute), Level: "ERROR", Logger: "quote", Message: "fetch failed"},
		{Timestamp: base.Add(2 * time.Minute), Level: "INFO", Logger: "agent", Message: "run finished"},
	}
	if err := store.WriteLogs(ctx, entries); err != nil {
		t.Fatalf("write: %v", err)
	}

	all, err := store.QueryLogs(ctx, domrepo.LogQuery{Limit: 100})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}
	// Newest first.
	if all[0].Message != "run finished" {
		t.Fatalf("unexpected order: %v", all[0].Message)
	}

	errs, err := store.QueryLogs(ctx, domrepo.LogQuery{Level: "error", Limit: 100})
	if err != nil {
		t.Fatalf("query level: %v", err)
	}
	if len(errs) != 1 || errs[0].Logger != "quote" {
		t.Fatalf("level filter wrong: %+v", errs)
	}

	byLogger, err := store.QueryLogs(ctx, domrepo.LogQuery{Logger: "scheduler", Limit: 100})
	if err != nil {
		t.Fatalf("query logger: %v", err)
	}
	if len(byLogger) != 1 || byLogger[0].Message != "job registered" {
		t.Fatalf("logger filter wrong: %+v", byLogger)
	}

	contains, err := store.QueryLogs(ctx, domrepo.LogQuery{Contains: "finish", Limit: 100})
	if err != nil {
		t.Fatalf("query contains: %v", err)
	}
	if len(contains) != 1 || contains[0].Logger != "agent" {
		t.Fatalf("contains filter wrong: %+v", contains)
	}

	windowed, err := store.QueryLogs(ctx, domrepo.LogQuery{
		Since: base.Add(30 * time.Second),
		Until: base.Add(90 * time.Second),
		Limit: 100,
	})
	if err != nil {
		t.Fatalf("query window: %v", err)
	}
	if len(windowed) != 1 || windowed[0].Level != "ERROR" {
		t.Fatalf("window filter wrong: %+v", windowed)
	}

	paged, err := store.QueryLogs(ctx, domrepo.LogQuery{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("query paged: %v", err)
	}
	if len(paged) != 1 || paged[0].Message != "fetch failed" {
		t.Fatalf("pagination wrong: %+v", paged)
	}

	total, err := store.CountLogs(ctx, domrepo.LogQuery{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 3 {
		t.Fatalf("count = %d, want 3", total)
	}

	if err := store.PruneLogs(ctx, 1); err != nil {
		t.Fatalf("prune: %v", err)
	}
	all, err = store.QueryLogs(ctx, domrepo.LogQuery{Limit: 100})
	if err != nil {
		t.Fatalf("query after prune: %v", err)
	}
	if len(all) != 1 || all[0].Message != "run finished" {
		t.Fatalf("prune kept wrong rows: %+v", all)
	}

	if err := store.ClearLogs(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	all, err = store.QueryLogs(ctx, domrepo.LogQuery{Limit: 100})
	if err != nil {
		t.Fatalf("query after clear: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty after clear, got %d", len(all))
	}
}
