package handlers

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/readings?from=2026-03-01&to=2026-03-03", nil)
	start, end, err := parseWindow(r)
	if err != nil {
		t.Fatalf("parseWindow returned error: %v", err)
	}
	if start.Year() != 2026 || start.Month() != time.March || start.Day() != 1 {
		t.Fatalf("unexpected start: %v", start)
	}
	if start.Hour() != 0 || start.Minute() != 0 {
		t.Fatalf("start not at midnight: %v", start)
	}
	// the to date is inclusive: the window must cover all of March 3rd
	lastMoment := time.Date(2026, time.March, 3, 23, 59, 59, 0, start.Location())
	if end.Before(lastMoment) {
		t.Fatalf("end %v does not cover the full to date", end)
	}
	if end.Day() != 3 {
		t.Fatalf("end spilled into the next day: %v", end)
	}
	// the window end is anchored to the next calendar midnight, so it stays
	// correct across DST transitions
	nextMidnight := time.Date(2026, time.March, 4, 0, 0, 0, 0, start.Location())
	if !end.Add(time.Nanosecond).Equal(nextMidnight) {
		t.Fatalf("end %v is not just before %v", end, nextMidnight)
	}
}

func TestParseWindowDefaultsToToday(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/readings", nil)
	start, end, err := parseWindow(r)
	if err != nil {
		t.Fatalf("parseWindow returned error: %v", err)
	}
	now := time.Now()
	if start.Day() != now.Day() || end.Day() != now.Day() {
		t.Fatalf("default window is not today: %v .. %v", start, end)
	}
	if !end.After(start) {
		t.Fatalf("empty default window: %v .. %v", start, end)
	}
}

func TestParseWindowRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"malformed from", "?from=yesterday"},
		{"malformed to", "?to=03-01-2026"},
		{"inverted range", "?from=2026-03-10&to=2026-03-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/readings"+tc.query, nil)
			if _, _, err := parseWindow(r); err == nil {
				t.Fatalf("expected error for %s", tc.query)
			}
		})
	}
}
