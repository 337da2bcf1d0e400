// Package advisor holds the rule-based suggestion scorer: a pure function
// from a technical-indicator summary and a holding flag to a trade-action
// recommendation with an itemized score breakdown. It keeps no state, does
// no I/O, and never fails; absent inputs simply leave rules silent.
package advisor

import (
	"strings"

	"panwatch/internal/domain/models"
)

// NeutralSignal is emitted when no tagged rule fired.
const NeutralSignal = "technically neutral"

const signalSeparator = " / "

// Proximity bands for the support/resistance rules: within 2% above support
// counts as "near support", within 2% below resistance as "near resistance".
const (
	supportBand    = 1.02
	resistanceBand = 0.98
)

var actionLabels = map[models.Action]string{
	models.ActionBuy:    "Buy",
	models.ActionAdd:    "Add",
	models.ActionReduce: "Reduce",
	models.ActionSell:   "Sell",
	models.ActionHold:   "Hold",
	models.ActionWatch:  "Watch",
	models.ActionAvoid:  "Avoid",
}

// actionColors is the fixed display palette: entries share a color family
// with the actions they are rendered next to.
var actionColors = map[models.Action]string{
	models.ActionBuy:    "red",
	models.ActionAdd:    "red",
	models.ActionReduce: "green",
	models.ActionSell:   "green",
	models.ActionHold:   "blue",
	models.ActionWatch:  "gray",
	models.ActionAvoid:  "gray",
}

// Label returns the display string for an action.
func Label(a models.Action) string { return actionLabels[a] }

// Color returns the palette entry for an action.
func Color(a models.Action) string { return actionColors[a] }

// tally accumulates fired rules in evaluation order.
type tally struct {
	items []models.AdviceItem
	tags  []string
	score int
}

// add records a tagged rule: the tag doubles as the item text.
func (t *tally) add(tag string, delta int) {
	t.items = append(t.items, models.AdviceItem{Text: tag, Delta: delta})
	t.tags = append(t.tags, tag)
	t.score += delta
}

// note records an untagged rule; it shows up in the breakdown but never in
// the joined signal text.
func (t *tally) note(text string, delta int) {
	t.items = append(t.items, models.AdviceItem{Text: text, Delta: delta})
	t.score += delta
}

// Score evaluates the rule table against the summary and resolves the trade
// action for the given holding flag. Same input always yields the same
// output; it is safe to call concurrently.
func Score(summary models.TechnicalSummary, holding bool) models.Advice {
	sig := Classify(summary)
	var t tally

	switch sig.Trend {
	case TrendBullish:
		t.add("bullish", 2)
	case TrendBearish:
		t.add("bearish", -2)
	case TrendMixed:
		t.note("MA interleaved", 0)
	}

	switch sig.MACD {
	case CrossGolden:
		t.add("MACD golden cross", 2)
	case CrossDeath:
		t.add("MACD death cross", -2)
	}
	if sig.MACDHist != nil {
		switch {
		case *sig.MACDHist > 0:
			t.note("MACD histogram positive", 1)
		case *sig.MACDHist < 0:
			t.note("MACD histogram negative", -1)
		}
	}

	switch sig.RSI {
	case RSIOversold:
		t.add("RSI oversold", 1)
	case RSIStrong:
		t.add("RSI strong", 1)
	case RSIOverbought:
		t.add("RSI overbought", -1)
	case RSIWeak:
		t.add("RSI weak", -1)
	}

	switch sig.KDJ {
	case CrossGolden:
		t.add("KDJ golden cross", 1)
	case CrossDeath:
		t.add("KDJ death cross", -1)
	}

	switch sig.Boll {
	case BandBreakUpper:
		t.add("broke upper band", 1)
	case BandBreakLower:
		t.add("broke lower band", -1)
	}

	switch sig.Volume {
	case VolumeSurge:
		t.add("volume surge", 1)
	case VolumeShrink:
		t.add("volume shrink", -1)
	}

	if sig.LastClose != nil && sig.Support != nil && *sig.Support > 0 &&
		*sig.LastClose <= *sig.Support*supportBand {
		t.add("near support", 1)
	}
	if sig.LastClose != nil && sig.Resistance != nil && *sig.Resistance > 0 &&
		*sig.LastClose >= *sig.Resistance*resistanceBand {
		t.add("near resistance", -1)
	}

	action := resolveAction(t.score, holding)
	return models.Advice{
		Action: action,
		Label:  actionLabels[action],
		Color:  actionColors[action],
		Signal: joinSignal(t.tags),
		Score:  t.score,
		Items:  t.items,
	}
}

// resolveAction maps (score, holding) to an action. The two branches are
// asymmetric on purpose: exit thresholds differ from entry thresholds.
// First match wins.
func resolveAction(score int, holding bool) models.Action {
	if holding {
		switch {
		case score >= 3:
			return models.ActionAdd
		case score >= 1:
			return models.ActionHold
		case score <= -3:
			return models.ActionSell
		case score <= -1:
			return models.ActionReduce
		}
		return models.ActionWatch
	}
	switch {
	case score >= 3:
		return models.ActionBuy
	case score <= -2:
		return models.ActionAvoid
	}
	return models.ActionWatch
}

// joinSignal joins distinct tags in first-occurrence order, falling back to
// the neutral string when nothing fired.
func joinSignal(tags []string) string {
	if len(tags) == 0 {
		return NeutralSignal
	}
	seen := make(map[string]struct{}, len(tags))
	distinct := tags[:0]
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		distinct = append(distinct, tag)
	}
	return strings.Join(distinct, signalSeparator)
}
