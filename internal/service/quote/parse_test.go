package quote

import (
	"strings"
	"testing"

	"panwatch/internal/domain/models"
)

func feedLine(symbol string, fields map[int]string) string {
	parts := make([]string, 40)
	for i := range parts {
		parts[i] = "0"
	}
	for i, v := range fields {
		parts[i] = v
	}
	return "v_" + symbol + `="` + strings.Join(parts, "~") + `";`
}

func TestParseLine(t *testing.T) {
	line := feedLine("sh600519", map[int]string{
		1:  "GZMT",
		2:  "600519",
		3:  "1500.00",
		4:  "1488.00",
		5:  "1490.00",
		6:  "25000",
		31: "12.00",
		32: "0.81",
		33: "1510.00",
		34: "1485.00",
		35: "1500.00/25000/3750000.5",
	})

	sym, q, ok := parseLine(line)
	if !ok {
		t.Fatal("expected ok")
	}
	if sym != "sh600519" {
		t.Fatalf("feed symbol = %q", sym)
	}
	if q.Name != "GZMT" {
		t.Fatalf("name = %q", q.Name)
	}
	if q.CurrentPrice != 1500 || q.PrevClose != 1488 || q.OpenPrice != 1490 {
		t.Fatalf("prices wrong: %+v", q)
	}
	if q.Volume != 25000 {
		t.Fatalf("volume = %v", q.Volume)
	}
	if q.ChangeAmount != 12 || q.ChangePct != 0.81 {
		t.Fatalf("change wrong: %+v", q)
	}
	if q.HighPrice != 1510 || q.LowPrice != 1485 {
		t.Fatalf("high/low wrong: %+v", q)
	}
	if q.Turnover != 3750000.5 {
		t.Fatalf("turnover = %v", q.Turnover)
	}
}

func TestParseLineRejects(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"empty answer", `v_sz999999="";`},
		{"no separator", "garbage"},
		{"too few fields", `v_sh600000="1~a~b~c";`},
		{"zero price", feedLine("sh600000", map[int]string{3: "0"})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, ok := parseLine(tc.line); ok {
				t.Fatalf("expected reject for %q", tc.line)
			}
		})
	}
}

func TestFeedSymbol(t *testing.T) {
	cases := []struct {
		symbol string
		market models.Market
		want   string
	}{
		{"600519", models.MarketCN, "sh600519"},
		{"000001", models.MarketCN, "sh000001"},
		{"300750", models.MarketCN, "sz300750"},
		{"sh600519", models.MarketCN, "sh600519"},
		{"SZ000858", models.MarketCN, "sz000858"},
		{"00700", models.MarketHK, "hk00700"},
		{"AAPL", models.MarketUS, "usAAPL"},
	}
	for _, tc := range cases {
		if got := feedSymbol(tc.symbol, tc.market); got != tc.want {
			t.Errorf("feedSymbol(%q, %s) = %q, want %q", tc.symbol, tc.market, got, tc.want)
		}
	}
}
