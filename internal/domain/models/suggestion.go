package models

import "time"

// Action is the trade action recommended by the rule-based advisor.
type Action string

const (
	ActionBuy    Action = "buy"
	ActionAdd    Action = "add"
	ActionReduce Action = "reduce"
	ActionSell   Action = "sell"
	ActionHold   Action = "hold"
	ActionWatch  Action = "watch"
	ActionAvoid  Action = "avoid"
)

// AdviceItem is one scoring rule that fired: its display text and signed
// contribution. Items are kept in rule-evaluation order.
type AdviceItem struct {
	Text  string `json:"text"`
	Delta int    `json:"delta"`
}

// Advice is the advisor output for one (summary, holding) pair.
// Score always equals the sum of item deltas, and Action depends on
// nothing but (Score, holding).
type Advice struct {
	Action Action       `json:"action"`
	Label  string       `json:"action_label"`
	Color  string       `json:"color"`
	Signal string       `json:"signal"`
	Score  int          `json:"score"`
	Items  []AdviceItem `json:"items"`
}

// AgentSuggestion is an AI-agent-produced recommendation. It is displayed
// alongside the rule-based Advice but never feeds into it.
type AgentSuggestion struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	AgentName string    `json:"agent_name"`
	Label     string    `json:"label"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Expired   bool      `json:"expired"`
}
