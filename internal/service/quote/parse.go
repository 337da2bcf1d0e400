package quote

import (
	"strconv"
	"strings"

	"panwatch/internal/domain/models"
)

// parseLine parses one feed line of the form
//
//	v_sh600519="1~NAME~600519~1500.00~...";
//
// returning the queried feed symbol and the quote. Empty answers
// (v_xx="") and malformed lines report ok=false.
func parseLine(line string) (string, models.Quote, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", models.Quote{}, false
	}

	head, value, found := strings.Cut(line, `="`)
	if !found {
		return "", models.Quote{}, false
	}
	value = strings.TrimRight(value, `";`)
	if value == "" {
		return "", models.Quote{}, false
	}

	feedSym := strings.TrimPrefix(strings.TrimSpace(head), "v_")

	parts := strings.Split(value, "~")
	if len(parts) < 36 {
		return "", models.Quote{}, false
	}

	q := models.Quote{
		Name:         parts[1],
		CurrentPrice: parseFloat(parts[3]),
		PrevClose:    parseFloat(parts[4]),
		OpenPrice:    parseFloat(parts[5]),
		Volume:       parseFloat(parts[6]),
		ChangeAmount: parseFloat(parts[31]),
		ChangePct:    parseFloat(parts[32]),
		HighPrice:    parseFloat(parts[33]),
		LowPrice:     parseFloat(parts[34]),
	}
	// parts[35] is "price/volume/turnover".
	if segs := strings.Split(parts[35], "/"); len(segs) >= 3 {
		q.Turnover = parseFloat(segs[2])
	}

	if q.CurrentPrice <= 0 {
		return "", models.Quote{}, false
	}
	return feedSym, q, true
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
