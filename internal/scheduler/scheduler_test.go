package scheduler

import (
	"reflect"
	"testing"
)

func TestNormalizeSpec(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"interval:30s", "@every 30s", false},
		{"interval:3m", "@every 3m", false},
		{"interval:1h", "@every 1h", false},
		{"interval:", "", true},
		{"30 9 * * 1-5", "0 30 9 * * 1-5", false},
		{"0 30 9 * * MON-FRI", "0 30 9 * * MON-FRI", false},
		{"@every 5m", "@every 5m", false},
		{"@daily", "@daily", false},
		{"not a schedule", "", true},
		{"1 2 3", "", true},
	}
	for _, tc := range cases {
		got, err := normalizeSpec(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("normalizeSpec(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeSpec(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("normalizeSpec(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGroupBySchedule(t *testing.T) {
	got := groupBySchedule("0 30 9 * * *", map[string]string{
		"sh600519": "",
		"sz000858": "",
		"sh600000": "0 0 10 * * *",
	})

	want := map[string][]string{
		"0 30 9 * * *": {"sh600519", "sz000858"},
		"0 0 10 * * *": {"sh600000"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGroupByScheduleEmpty(t *testing.T) {
	got := groupBySchedule("0 30 9 * * *", nil)
	if len(got) != 0 {
		t.Fatalf("expected no groups, got %v", got)
	}
}
