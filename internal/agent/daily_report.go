package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"panwatch/internal/advisor"
	"panwatch/internal/domain/models"
	"panwatch/internal/domain/repository"
	"panwatch/internal/service/ai"
	"panwatch/internal/service/indicator"
	"panwatch/internal/service/quote"
	"panwatch/pkg/logger"
)

const dailyReportSystemPrompt = `You are a cautious equity analyst reviewing a personal watchlist.
For the stock you are given, answer with a single JSON object:
{"label": "<buy|add|reduce|sell|hold|watch|avoid>", "reason": "<one or two sentences in plain language>"}
Base your answer only on the data provided. Do not invent prices.`

// DailyReport reviews each bound stock once a day: it combines the live
// quote, the technical summary, and the rule-based advice into a prompt
// and stores the model's verdict in the suggestion pool.
type DailyReport struct {
	stocks      repository.StockStore
	suggestions repository.SuggestionStore
	quotes      *quote.Service
	indicators  *indicator.Service
	chat        *ai.Client
	log         *logger.Logger
	ttl         time.Duration
}

func NewDailyReport(
	stocks repository.StockStore,
	suggestions repository.SuggestionStore,
	quotes *quote.Service,
	indicators *indicator.Service,
	chat *ai.Client,
	log *logger.Logger,
	suggestionTTL time.Duration,
) *DailyReport {
	if suggestionTTL <= 0 {
		suggestionTTL = 24 * time.Hour
	}
	return &DailyReport{
		stocks:      stocks,
		suggestions: suggestions,
		quotes:      quotes,
		indicators:  indicators,
		chat:        chat,
		log:         log.Named("daily_report"),
		ttl:         suggestionTTL,
	}
}

func (d *DailyReport) Name() string        { return "daily_report" }
func (d *DailyReport) DisplayName() string { return "Daily Report" }
func (d *DailyReport) Description() string {
	return "Reviews each bound stock once a day and posts an AI verdict to the suggestion pool."
}

func (d *DailyReport) Defaults() models.AgentConfig {
	return models.AgentConfig{
		Name:        d.Name(),
		DisplayName: d.DisplayName(),
		Description: d.Description(),
		Enabled:     true,
		Schedule:    "0 30 9 * * MON-FRI",
		Config:      map[string]any{},
	}
}

func (d *DailyReport) Run(ctx context.Context, ac Context) (string, error) {
	if len(ac.Symbols) == 0 {
		return "no stocks bound", nil
	}

	stocks := make([]models.Stock, 0, len(ac.Symbols))
	for _, symbol := range ac.Symbols {
		st, err := d.stocks.GetBySymbol(ctx, symbol)
		if err != nil {
			d.log.Warn("skipping unknown symbol", logger.String("symbol", symbol), logger.Error(err))
			continue
		}
		stocks = append(stocks, *st)
	}
	if len(stocks) == 0 {
		return "no stocks bound", nil
	}

	quotes, err := d.quotes.BatchQuotes(ctx, stocks)
	if err != nil {
		return "", fmt.Errorf("fetch quotes: %w", err)
	}

	var done, failed int
	for _, st := range stocks {
		if err := d.reviewStock(ctx, ac.Config, st, quotes[st.Symbol]); err != nil {
			failed++
			d.log.Warn("stock review failed",
				logger.String("symbol", st.Symbol),
				logger.Error(err),
			)
			continue
		}
		done++
	}

	// Suggestions past expiry stay visible for a week, then get dropped.
	cutoff := time.Now().UTC().Add(-7 * 24 * time.Hour)
	if n, err := d.suggestions.PruneExpired(ctx, cutoff); err != nil {
		d.log.Warn("prune suggestions failed", logger.Error(err))
	} else if n > 0 {
		d.log.Info("pruned expired suggestions", logger.Int64("count", n))
	}

	result := fmt.Sprintf("reviewed %d stocks, %d failed", done, failed)
	if done == 0 && failed > 0 {
		return result, fmt.Errorf("all %d reviews failed", failed)
	}
	return result, nil
}

func (d *DailyReport) reviewStock(ctx context.Context, cfg models.AgentConfig, st models.Stock, q models.Quote) error {
	summary, err := d.indicators.Summary(ctx, st.Symbol, st.Market)
	if err != nil {
		return err
	}
	advice := advisor.Score(summary, st.Holding())

	content, err := d.chat.Chat(ctx, []ai.Message{
		{Role: "system", Content: dailyReportSystemPrompt},
		{Role: "user", Content: buildStockPrompt(st, q, summary, advice)},
	}, ai.Options{Model: cfg.AIModel, BaseURL: cfg.AIBaseURL})
	if err != nil {
		return err
	}

	var verdict struct {
		Label  string `json:"label"`
		Reason string `json:"reason"`
	}
	if err := ai.DecodeJSON(content, &verdict); err != nil {
		return fmt.Errorf("parse verdict: %w", err)
	}
	if verdict.Label == "" {
		return fmt.Errorf("verdict missing label")
	}

	now := time.Now().UTC()
	_, err = d.suggestions.Add(ctx, &models.AgentSuggestion{
		Symbol:    st.Symbol,
		AgentName: d.Name(),
		Label:     strings.ToLower(verdict.Label),
		Reason:    verdict.Reason,
		CreatedAt: now,
		ExpiresAt: now.Add(d.ttl),
	})
	return err
}

func buildStockPrompt(st models.Stock, q models.Quote, summary models.TechnicalSummary, advice models.Advice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock: %s (%s, %s market)\n", st.Name, st.Symbol, st.Market)
	if st.Holding() {
		fmt.Fprintf(&b, "Position: holding %d shares", *st.Quantity)
		if st.CostPrice != nil {
			fmt.Fprintf(&b, " at cost %.2f", *st.CostPrice)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Position: not holding\n")
	}
	if q.CurrentPrice > 0 {
		fmt.Fprintf(&b, "Quote: price %.2f, change %+.2f%%, high %.2f, low %.2f, volume %.0f\n",
			q.CurrentPrice, q.ChangePct, q.HighPrice, q.LowPrice, q.Volume)
	} else {
		b.WriteString("Quote: unavailable\n")
	}
	if !summary.Empty() {
		fmt.Fprintf(&b, "Technical summary: trend=%s macd=%s rsi=%s kdj=%s boll=%s volume=%s\n",
			summary.Trend, summary.MACDStatus, summary.RSIStatus,
			summary.KDJStatus, summary.BollStatus, summary.VolumeTrend)
	}
	fmt.Fprintf(&b, "Rule-based advice: %s (score %+d, %s)\n", advice.Action, advice.Score, advice.Signal)
	return b.String()
}
