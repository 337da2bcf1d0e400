package models

import "time"

// Market identifies the exchange a symbol trades on.
type Market string

const (
	MarketCN Market = "CN"
	MarketHK Market = "HK"
	MarketUS Market = "US"
)

// Valid reports whether m is one of the supported markets.
func (m Market) Valid() bool {
	switch m {
	case MarketCN, MarketHK, MarketUS:
		return true
	}
	return false
}

// Stock is a watchlist entry. CostPrice and Quantity are nil for stocks
// that are watched but not held.
type Stock struct {
	ID        int64               `json:"id"`
	Symbol    string              `json:"symbol"`
	Name      string              `json:"name"`
	Market    Market              `json:"market"`
	CostPrice *float64            `json:"cost_price,omitempty"`
	Quantity  *int64              `json:"quantity,omitempty"`
	Enabled   bool                `json:"enabled"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Agents    []StockAgentBinding `json:"agents"`
}

// Holding reports whether a position exists for this stock. It selects
// which decision-threshold branch the advisor applies.
func (s *Stock) Holding() bool {
	return s.Quantity != nil && *s.Quantity > 0
}

// StockAgentBinding links a stock to an agent. Schedule overrides the
// agent's global cron spec when non-empty.
type StockAgentBinding struct {
	AgentName string `json:"agent_name"`
	Schedule  string `json:"schedule,omitempty"`
}

// StockListItem is a search result from the upstream symbol directory.
type StockListItem struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Market Market `json:"market"`
}

// Quote is a real-time snapshot for one symbol.
type Quote struct {
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	CurrentPrice float64   `json:"current_price"`
	PrevClose    float64   `json:"prev_close"`
	OpenPrice    float64   `json:"open_price"`
	HighPrice    float64   `json:"high_price"`
	LowPrice     float64   `json:"low_price"`
	Volume       float64   `json:"volume"`
	Turnover     float64   `json:"turnover"`
	ChangeAmount float64   `json:"change_amount"`
	ChangePct    float64   `json:"change_pct"`
	Timestamp    time.Time `json:"timestamp"`
}
