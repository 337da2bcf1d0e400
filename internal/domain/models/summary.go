package models

// TechnicalSummary is the precomputed indicator digest for one symbol as of
// a trading session. Every field is optional: the upstream indicator service
// omits what it could not compute, and an absent field simply means the
// corresponding advisor rule does not fire.
//
// The status fields carry free-text classifications ("bullish alignment",
// "MACD golden cross", ...); they are normalized into closed variant types
// once, at the advisor boundary.
type TechnicalSummary struct {
	Trend       string   `json:"trend,omitempty"`
	MACDStatus  string   `json:"macd_status,omitempty"`
	MACDHist    *float64 `json:"macd_hist,omitempty"`
	RSIStatus   string   `json:"rsi_status,omitempty"`
	KDJStatus   string   `json:"kdj_status,omitempty"`
	BollStatus  string   `json:"boll_status,omitempty"`
	VolumeTrend string   `json:"volume_trend,omitempty"`
	LastClose   *float64 `json:"last_close,omitempty"`
	Support     *float64 `json:"support,omitempty"`
	Resistance  *float64 `json:"resistance,omitempty"`
}

// Empty reports whether no field is populated.
func (s *TechnicalSummary) Empty() bool {
	return s.Trend == "" && s.MACDStatus == "" && s.MACDHist == nil &&
		s.RSIStatus == "" && s.KDJStatus == "" && s.BollStatus == "" &&
		s.VolumeTrend == "" && s.LastClose == nil && s.Support == nil &&
		s.Resistance == nil
}
