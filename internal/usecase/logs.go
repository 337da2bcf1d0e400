package usecase

import (
	"context"
	"fmt"
	"time"

	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/pkg/util"
)

// LogsUseCase serves the log center.
type LogsUseCase struct {
	logs domrepo.LogStore
}

func NewLogsUseCase(logs domrepo.LogStore) *LogsUseCase {
	return &LogsUseCase{logs: logs}
}

// LogPage is one page of log entries plus the filtered total.
type LogPage struct {
	Items []models.LogEntry `json:"items"`
	Total int64             `json:"total"`
}

func (uc *LogsUseCase) Query(ctx context.Context, req models.LogsQueryRequest) (*LogPage, error) {
	q := domrepo.LogQuery{
		Level:    req.Level,
		Logger:   req.Logger,
		Contains: req.Q,
		Since:    util.ParseTimeDefault(req.Since, time.Time{}),
		Until:    util.ParseTimeDefault(req.Until, time.Time{}),
		Limit:    req.Limit,
		Offset:   req.Offset,
	}

	items, err := uc.logs.QueryLogs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	total, err := uc.logs.CountLogs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count logs: %w", err)
	}
	return &LogPage{Items: items, Total: total}, nil
}

func (uc *LogsUseCase) Clear(ctx context.Context) error {
	if err := uc.logs.ClearLogs(ctx); err != nil {
		return fmt.Errorf("clear logs: %w", err)
	}
	return nil
}
