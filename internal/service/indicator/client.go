package indicator

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"panwatch/internal/domain/models"
	"panwatch/pkg/metrics"
	"panwatch/pkg/web"
)

// Service fetches precomputed technical summaries from the indicator
// backend. A failed fetch is reported per symbol; it never fails a whole
// insights batch.
type Service struct {
	client   *web.Client
	baseURL  string
	recorder *metrics.Recorder
}

func NewService(baseURL string, timeout time.Duration, recorder *metrics.Recorder) *Service {
	return &Service{
		client:   web.NewClient(web.WithTimeout(timeout)),
		baseURL:  strings.TrimRight(baseURL, "/"),
		recorder: recorder,
	}
}

// Summary fetches the daily-kline technical summary for one symbol.
func (s *Service) Summary(ctx context.Context, symbol string, market models.Market) (models.TechnicalSummary, error) {
	params := url.Values{
		"symbol": {symbol},
		"market": {string(market)},
	}

	var out models.TechnicalSummary
	start := time.Now()
	err := s.client.GetJSON(ctx, s.baseURL+"/summary?"+params.Encode(), &out)
	s.recorder.UpstreamRequest("indicator", time.Since(start), err)
	if err != nil {
		return models.TechnicalSummary{}, fmt.Errorf("fetch summary %s: %w", symbol, err)
	}
	return out, nil
}
