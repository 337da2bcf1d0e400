package models

// Requests for the dashboard HTTP API. Defined in domain for consistency
// and reuse; bind/defaults/validate happen at the web boundary.

type StockCreateRequest struct {
	Symbol    string   `json:"symbol" validate:"required"`
	Name      string   `json:"name" validate:"required"`
	Market    string   `json:"market" default:"CN" validate:"oneof=CN HK US"`
	CostPrice *float64 `json:"cost_price" validate:"omitempty,gt=0"`
	Quantity  *int64   `json:"quantity" validate:"omitempty,gte=0"`
}

type StockUpdateRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=1"`
	CostPrice *float64 `json:"cost_price" validate:"omitempty,gt=0"`
	Quantity  *int64   `json:"quantity" validate:"omitempty,gte=0"`
	Enabled   *bool    `json:"enabled"`
}

type StockAgentItem struct {
	AgentName string `json:"agent_name" validate:"required"`
	Schedule  string `json:"schedule"`
}

type StockAgentsUpdateRequest struct {
	Agents []StockAgentItem `json:"agents" validate:"dive"`
}

type StockSearchRequest struct {
	Q      string `query:"q" validate:"required,min=1"`
	Market string `query:"market" validate:"omitempty,oneof=CN HK US"`
}

type AgentUpdateRequest struct {
	Enabled   *bool          `json:"enabled"`
	Schedule  *string        `json:"schedule"`
	AIModel   *string        `json:"ai_model"`
	AIBaseURL *string        `json:"ai_base_url"`
	Config    map[string]any `json:"config"`
}

type AgentHistoryRequest struct {
	Limit int `query:"limit" default:"20" validate:"gte=1,lte=200"`
}

type SuggestionHistoryRequest struct {
	Limit int `query:"limit" default:"20" validate:"gte=1,lte=200"`
}

type SettingUpdateRequest struct {
	Value string `json:"value"`
}

type LogsQueryRequest struct {
	Level  string `query:"level"`
	Q      string `query:"q"`
	Logger string `query:"logger"`
	Since  string `query:"since"`
	Until  string `query:"until"`
	Limit  int    `query:"limit" default:"200" validate:"gte=1,lte=1000"`
	Offset int    `query:"offset" validate:"gte=0"`
}

type InsightQuery struct {
	Symbol string `json:"symbol" validate:"required"`
	Market string `json:"market" default:"CN" validate:"oneof=CN HK US"`
}

type InsightsBatchRequest struct {
	Items []InsightQuery `json:"items" validate:"required,min=1,max=100,dive"`
}

// Insight is the aggregated per-symbol view returned by the batch endpoint:
// live quote, technical summary, the rule-based advice derived from it, and
// the latest agent suggestion. Parts that failed upstream are nil with the
// failure noted in Errors.
type Insight struct {
	Symbol     string            `json:"symbol"`
	Market     Market            `json:"market"`
	Quote      *Quote            `json:"quote"`
	Summary    *TechnicalSummary `json:"kline_summary"`
	Advice     *Advice           `json:"advice"`
	Suggestion *AgentSuggestion  `json:"suggestion"`
	Errors     map[string]string `json:"errors,omitempty"`
}
