package advisor

import (
	"strings"

	"panwatch/internal/domain/models"
)

// Closed variant types for the free-text status classifications the
// indicator service emits. Normalization happens here, once, so the rule
// table never touches strings.

type Trend int

const (
	TrendUnknown Trend = iota
	TrendBullish
	TrendBearish
	TrendMixed
)

type Cross int

const (
	CrossNone Cross = iota
	CrossGolden
	CrossDeath
)

type RSILevel int

const (
	RSIUnknown RSILevel = iota
	RSIOversold
	RSIStrong
	RSINeutral
	RSIWeak
	RSIOverbought
)

type BandBreak int

const (
	BandNone BandBreak = iota
	BandBreakUpper
	BandBreakLower
)

type VolumeTrend int

const (
	VolumeFlat VolumeTrend = iota
	VolumeSurge
	VolumeShrink
)

// Signals is a TechnicalSummary with every status field resolved to its
// closed variant. Numeric fields pass through untouched.
type Signals struct {
	Trend      Trend
	MACD       Cross
	MACDHist   *float64
	RSI        RSILevel
	KDJ        Cross
	Boll       BandBreak
	Volume     VolumeTrend
	LastClose  *float64
	Support    *float64
	Resistance *float64
}

// Classify normalizes the free-text summary into Signals. Matching is
// substring-based on lowercased input; unrecognized text maps to the
// zero variant, which no rule triggers on.
func Classify(s models.TechnicalSummary) Signals {
	return Signals{
		Trend:      classifyTrend(s.Trend),
		MACD:       classifyCross(s.MACDStatus),
		MACDHist:   s.MACDHist,
		RSI:        classifyRSI(s.RSIStatus),
		KDJ:        classifyCross(s.KDJStatus),
		Boll:       classifyBand(s.BollStatus),
		Volume:     classifyVolume(s.VolumeTrend),
		LastClose:  s.LastClose,
		Support:    s.Support,
		Resistance: s.Resistance,
	}
}

func classifyTrend(text string) Trend {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "bullish alignment"):
		return TrendBullish
	case strings.Contains(t, "bearish alignment"):
		return TrendBearish
	case strings.Contains(t, "crossed"), strings.Contains(t, "interleaved"):
		return TrendMixed
	}
	return TrendUnknown
}

func classifyCross(text string) Cross {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "golden cross"):
		return CrossGolden
	case strings.Contains(t, "death cross"):
		return CrossDeath
	}
	return CrossNone
}

func classifyRSI(text string) RSILevel {
	t := strings.ToLower(text)
	switch {
	// "oversold" and "overbought" must win over the bare level words.
	case strings.Contains(t, "oversold"):
		return RSIOversold
	case strings.Contains(t, "overbought"):
		return RSIOverbought
	case strings.Contains(t, "strong"):
		return RSIStrong
	case strings.Contains(t, "weak"):
		return RSIWeak
	case strings.Contains(t, "neutral"):
		return RSINeutral
	}
	return RSIUnknown
}

func classifyBand(text string) BandBreak {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "broke above"):
		return BandBreakUpper
	case strings.Contains(t, "broke below"):
		return BandBreakLower
	}
	return BandNone
}

func classifyVolume(text string) VolumeTrend {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "surge"):
		return VolumeSurge
	case strings.Contains(t, "shrink"):
		return VolumeShrink
	}
	return VolumeFlat
}
