package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/internal/usecase"

	"github.com/labstack/echo/v4"
)

type fakeLogStore struct {
	entries   []models.LogEntry
	lastQuery domrepo.LogQuery
	cleared   bool
}

func (f *fakeLogStore) WriteLogs(_ context.Context, entries []models.LogEntry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeLogStore) QueryLogs(_ context.Context, q domrepo.LogQuery) ([]models.LogEntry, error) {
	f.lastQuery = q
	return f.entries, nil
}

func (f *fakeLogStore) CountLogs(_ context.Context, _ domrepo.LogQuery) (int64, error) {
	return int64(len(f.entries)), nil
}

func (f *fakeLogStore) PruneLogs(_ context.Context, _ int) error { return nil }

func (f *fakeLogStore) ClearLogs(_ context.Context) error {
	f.cleared = true
	f.entries = nil
	return nil
}

func newLogsTestServer(store *fakeLogStore) *echo.Echo {
	e := echo.New()
	NewLogsHandler(usecase.NewLogsUseCase(store)).RegisterRoutes(e)
	return e
}

func TestLogsQueryEndpoint(t *testing.T) {
	store := &fakeLogStore{entries: []models.LogEntry{
		{Level: "error", Logger: "quote", Message: "fetch failed"},
	}}
	e := newLogsTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/logs?level=error&q=fetch&limit=50", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Status int `json:"status"`
		Data   struct {
			Rows  []models.LogEntry `json:"rows"`
			Total int64             `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != http.StatusOK {
		t.Errorf("envelope status = %d, want 200", body.Status)
	}
	if len(body.Data.Rows) != 1 || body.Data.Total != 1 {
		t.Fatalf("rows = %d total = %d, want 1/1", len(body.Data.Rows), body.Data.Total)
	}
	if body.Data.Rows[0].Message != "fetch failed" {
		t.Errorf("message = %q", body.Data.Rows[0].Message)
	}

	if store.lastQuery.Level != "error" {
		t.Errorf("level filter = %q, want error", store.lastQuery.Level)
	}
	if store.lastQuery.Contains != "fetch" {
		t.Errorf("contains filter = %q, want fetch", store.lastQuery.Contains)
	}
	if store.lastQuery.Limit != 50 {
		t.Errorf("limit = %d, want 50", store.lastQuery.Limit)
	}
}

func TestLogsQueryDefaultLimit(t *testing.T) {
	store := &fakeLogStore{}
	e := newLogsTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.lastQuery.Limit != 200 {
		t.Errorf("default limit = %d, want 200", store.lastQuery.Limit)
	}
}

func TestLogsQueryRejectsBadLimit(t *testing.T) {
	e := newLogsTestServer(&fakeLogStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/logs?limit=5000", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != http.StatusBadRequest {
		t.Errorf("envelope status = %d, want 400", body.Status)
	}
}

func TestLogsClearEndpoint(t *testing.T) {
	store := &fakeLogStore{entries: []models.LogEntry{{Message: "old"}}}
	e := newLogsTestServer(store)

	req := httptest.NewRequest(http.MethodDelete, "/api/logs", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !store.cleared {
		t.Error("store was not cleared")
	}
}
