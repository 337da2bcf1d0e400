package advisor

import (
	"reflect"
	"testing"

	"panwatch/internal/domain/models"
)

func f(v float64) *float64 { return &v }

func TestScore_EmptySummary(t *testing.T) {
	for _, holding := range []bool{false, true} {
		adv := Score(models.TechnicalSummary{}, holding)
		if adv.Score != 0 {
			t.Errorf("holding=%v: expected score 0, got %d", holding, adv.Score)
		}
		if adv.Action != models.ActionWatch {
			t.Errorf("holding=%v: expected watch, got %s", holding, adv.Action)
		}
		if adv.Signal != NeutralSignal {
			t.Errorf("holding=%v: expected neutral signal, got %q", holding, adv.Signal)
		}
		if len(adv.Items) != 0 {
			t.Errorf("holding=%v: expected no items, got %v", holding, adv.Items)
		}
	}
}

func TestScore_BullishExample(t *testing.T) {
	// trend bullish(+2), MACD golden(+2), hist positive(+1), RSI strong(+1) = 6
	sum := models.TechnicalSummary{
		Trend:      "bullish alignment",
		MACDStatus: "golden cross",
		MACDHist:   f(0.5),
		RSIStatus:  "strong",
	}
	adv := Score(sum, false)
	if adv.Score != 6 {
		t.Fatalf("expected score 6, got %d (items %v)", adv.Score, adv.Items)
	}
	if adv.Action != models.ActionBuy {
		t.Errorf("expected buy, got %s", adv.Action)
	}
	if adv.Label != "Buy" {
		t.Errorf("expected label Buy, got %q", adv.Label)
	}
	want := []models.AdviceItem{
		{Text: "bullish", Delta: 2},
		{Text: "MACD golden cross", Delta: 2},
		{Text: "MACD histogram positive", Delta: 1},
		{Text: "RSI strong", Delta: 1},
	}
	if !reflect.DeepEqual(adv.Items, want) {
		t.Errorf("items mismatch:\n got %v\nwant %v", adv.Items, want)
	}
	if adv.Signal != "bullish / MACD golden cross / RSI strong" {
		t.Errorf("unexpected signal %q", adv.Signal)
	}
}

func TestScore_BearishExample(t *testing.T) {
	// trend bearish(-2), MACD death(-2), volume shrink(-1) = -5 while holding
	sum := models.TechnicalSummary{
		Trend:       "bearish alignment",
		MACDStatus:  "death cross",
		VolumeTrend: "shrink",
	}
	adv := Score(sum, true)
	if adv.Score != -5 {
		t.Fatalf("expected score -5, got %d", adv.Score)
	}
	if adv.Action != models.ActionSell {
		t.Errorf("expected sell, got %s", adv.Action)
	}
}

func TestScore_ItemsSumEqualsScore(t *testing.T) {
	cases := []models.TechnicalSummary{
		{},
		{Trend: "bullish alignment", KDJStatus: "golden cross"},
		{Trend: "MAs crossed", MACDHist: f(-0.2), RSIStatus: "weak"},
		{
			Trend: "bearish alignment", MACDStatus: "death cross",
			RSIStatus: "overbought", KDJStatus: "death cross",
			BollStatus: "broke below lower band", VolumeTrend: "volume surge",
			LastClose: f(9.5), Support: f(10), Resistance: f(9.6),
		},
	}
	for i, sum := range cases {
		for _, holding := range []bool{false, true} {
			adv := Score(sum, holding)
			total := 0
			for _, it := range adv.Items {
				total += it.Delta
			}
			if total != adv.Score {
				t.Errorf("case %d holding=%v: items sum %d != score %d", i, holding, total, adv.Score)
			}
		}
	}
}

func TestScore_MixedTrendRecordedWithoutContribution(t *testing.T) {
	adv := Score(models.TechnicalSummary{Trend: "MAs interleaved"}, false)
	if adv.Score != 0 {
		t.Fatalf("expected score 0, got %d", adv.Score)
	}
	if len(adv.Items) != 1 || adv.Items[0].Delta != 0 {
		t.Fatalf("expected one zero-delta item, got %v", adv.Items)
	}
	// untagged rule: the signal still falls back to neutral
	if adv.Signal != NeutralSignal {
		t.Errorf("expected neutral signal, got %q", adv.Signal)
	}
}

func TestScore_SupportResistanceProximity(t *testing.T) {
	tests := []struct {
		name      string
		lastClose float64
		support   *float64
		resist    *float64
		delta     int
	}{
		{"at support band edge", 10.1, f(10.0), nil, 1},  // 10.1 <= 10.2
		{"below support", 9.9, f(10.0), nil, 1},
		{"above support band", 10.3, f(10.0), nil, 0},
		{"at resistance band edge", 9.9, nil, f(10.0), -1}, // 9.9 >= 9.8
		{"below resistance band", 9.7, nil, f(10.0), 0},
		{"zero support ignored", 5, f(0), nil, 0},
		{"negative resistance ignored", 5, nil, f(-1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := models.TechnicalSummary{
				LastClose:  f(tt.lastClose),
				Support:    tt.support,
				Resistance: tt.resist,
			}
			adv := Score(sum, false)
			if adv.Score != tt.delta {
				t.Errorf("expected score %d, got %d", tt.delta, adv.Score)
			}
		})
	}
}

func TestScore_NoPriceMeansNoProximityRules(t *testing.T) {
	adv := Score(models.TechnicalSummary{Support: f(10), Resistance: f(12)}, false)
	if adv.Score != 0 || len(adv.Items) != 0 {
		t.Errorf("expected silent rules without last_close, got %+v", adv)
	}
}

func TestResolveAction_HoldingBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  models.Action
	}{
		{4, models.ActionAdd},
		{3, models.ActionAdd},
		{2, models.ActionHold},
		{1, models.ActionHold},
		{0, models.ActionWatch},
		{-1, models.ActionReduce},
		{-2, models.ActionReduce},
		{-3, models.ActionSell},
		{-5, models.ActionSell},
	}
	for _, tt := range tests {
		if got := resolveAction(tt.score, true); got != tt.want {
			t.Errorf("holding score %d: expected %s, got %s", tt.score, tt.want, got)
		}
	}
}

func TestResolveAction_NotHoldingBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  models.Action
	}{
		{5, models.ActionBuy},
		{3, models.ActionBuy},
		{2, models.ActionWatch},
		{0, models.ActionWatch},
		{-1, models.ActionWatch},
		{-2, models.ActionAvoid},
		{-4, models.ActionAvoid},
	}
	for _, tt := range tests {
		if got := resolveAction(tt.score, false); got != tt.want {
			t.Errorf("score %d: expected %s, got %s", tt.score, tt.want, got)
		}
	}
}

// rank orders actions from most bearish to most bullish within a branch.
var rank = map[models.Action]int{
	models.ActionSell:   -3,
	models.ActionAvoid:  -2,
	models.ActionReduce: -1,
	models.ActionWatch:  0,
	models.ActionHold:   1,
	models.ActionAdd:    2,
	models.ActionBuy:    2,
}

func TestResolveAction_MonotonicInScore(t *testing.T) {
	for _, holding := range []bool{false, true} {
		prev := resolveAction(-10, holding)
		for score := -9; score <= 10; score++ {
			cur := resolveAction(score, holding)
			if rank[cur] < rank[prev] {
				t.Errorf("holding=%v: action went more bearish from score %d (%s) to %d (%s)",
					holding, score-1, prev, score, cur)
			}
			prev = cur
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	sum := models.TechnicalSummary{
		Trend: "bullish alignment", MACDStatus: "golden cross", MACDHist: f(0.02),
		RSIStatus: "neutral", KDJStatus: "golden cross",
		BollStatus: "broke above upper band", VolumeTrend: "volume surge",
		LastClose: f(101), Support: f(100), Resistance: f(120),
	}
	a := Score(sum, true)
	b := Score(sum, true)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different advice:\n%+v\n%+v", a, b)
	}
}

func TestScore_SignalDeduplicates(t *testing.T) {
	// MACD and KDJ both golden-cross; tags differ so both appear once.
	sum := models.TechnicalSummary{MACDStatus: "golden cross", KDJStatus: "golden cross"}
	adv := Score(sum, false)
	if adv.Signal != "MACD golden cross / KDJ golden cross" {
		t.Errorf("unexpected signal %q", adv.Signal)
	}
}

func TestLabelAndColor_CoverAllActions(t *testing.T) {
	actions := []models.Action{
		models.ActionBuy, models.ActionAdd, models.ActionReduce, models.ActionSell,
		models.ActionHold, models.ActionWatch, models.ActionAvoid,
	}
	wantLabel := map[models.Action]string{
		models.ActionBuy: "Buy", models.ActionAdd: "Add", models.ActionReduce: "Reduce",
		models.ActionSell: "Sell", models.ActionHold: "Hold", models.ActionWatch: "Watch",
		models.ActionAvoid: "Avoid",
	}
	for _, a := range actions {
		if Label(a) != wantLabel[a] {
			t.Errorf("action %s: expected label %q, got %q", a, wantLabel[a], Label(a))
		}
		if Color(a) == "" {
			t.Errorf("action %s: missing palette entry", a)
		}
	}
	if Color(models.ActionBuy) != Color(models.ActionAdd) {
		t.Error("buy and add should share a color family")
	}
	if Color(models.ActionReduce) != Color(models.ActionSell) {
		t.Error("reduce and sell should share a color family")
	}
	if Color(models.ActionWatch) != Color(models.ActionAvoid) {
		t.Error("watch and avoid should share the neutral color")
	}
}
