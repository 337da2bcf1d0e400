package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"panwatch/internal/domain/models"
	"panwatch/internal/service/ratelimit"
	"panwatch/pkg/logger"
	"panwatch/pkg/metrics"
	"panwatch/pkg/web"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// Service fetches real-time quotes from the Tencent HTTP endpoint. The
// feed answers one GBK-encoded line per requested symbol.
type Service struct {
	client     *web.Client
	baseURL    string
	limiter    *ratelimit.Limiter
	ratePerSec float64
	burst      float64
	recorder   *metrics.Recorder
	log        *logger.Logger
}

// Config holds quote service settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec float64
	Burst      float64
}

func NewService(cfg Config, recorder *metrics.Recorder, log *logger.Logger) *Service {
	return &Service{
		client:     web.NewClient(web.WithTimeout(cfg.Timeout)),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		limiter:    ratelimit.New(),
		ratePerSec: cfg.RatePerSec,
		burst:      cfg.Burst,
		recorder:   recorder,
		log:        log.Named("quote"),
	}
}

// BatchQuotes fetches quotes for the given stocks in one upstream call.
// The result is keyed by watchlist symbol; symbols the feed did not
// answer for are absent.
func (s *Service) BatchQuotes(ctx context.Context, stocks []models.Stock) (map[string]models.Quote, error) {
	if len(stocks) == 0 {
		return map[string]models.Quote{}, nil
	}

	if err := s.limiter.Wait(ctx, "tencent", s.burst, s.ratePerSec); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	// Map feed symbol -> watchlist symbol so responses can be keyed back.
	feedSymbols := make([]string, 0, len(stocks))
	bySymbol := make(map[string]string, len(stocks))
	for _, st := range stocks {
		fs := feedSymbol(st.Symbol, st.Market)
		feedSymbols = append(feedSymbols, fs)
		bySymbol[fs] = st.Symbol
	}

	url := s.baseURL + "/q=" + strings.Join(feedSymbols, ",")
	start := time.Now()
	raw, err := s.client.GetBytes(ctx, url)
	s.recorder.UpstreamRequest("tencent_quote", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode gbk: %w", err)
	}

	now := time.Now()
	out := make(map[string]models.Quote, len(stocks))
	for _, line := range strings.Split(string(decoded), ";") {
		fs, quote, ok := parseLine(line)
		if !ok {
			continue
		}
		symbol, known := bySymbol[fs]
		if !known {
			continue
		}
		quote.Symbol = symbol
		quote.Timestamp = now
		out[symbol] = quote
	}

	s.log.Debug("batch quotes fetched",
		logger.Int("requested", len(stocks)),
		logger.Int("received", len(out)),
	)
	return out, nil
}

// feedSymbol converts a watchlist symbol to the feed's format:
// sh600519 / sz000001 / hk00700 / usAAPL. Mainland symbols already
// carrying an sh/sz prefix pass through.
func feedSymbol(symbol string, market models.Market) string {
	switch market {
	case models.MarketHK:
		return "hk" + symbol
	case models.MarketUS:
		return "us" + symbol
	}
	lower := strings.ToLower(symbol)
	if strings.HasPrefix(lower, "sh") || strings.HasPrefix(lower, "sz") {
		return lower
	}
	if strings.HasPrefix(symbol, "6") || strings.HasPrefix(symbol, "000") {
		return "sh" + symbol
	}
	return "sz" + symbol
}
