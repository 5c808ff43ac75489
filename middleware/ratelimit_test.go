package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr with port", "10.0.0.5:39281", "", "10.0.0.5"},
		{"forwarded single", "10.0.0.5:39281", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain takes first hop", "10.0.0.5:39281", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"forwarded with spaces", "10.0.0.5:39281", " 203.0.113.9 ", "203.0.113.9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := clientIP(r); got != tc.want {
				t.Fatalf("clientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimiterExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	limiter := rl.getLimiter("10.0.0.1")

	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Fatalf("request %d unexpectedly limited", i+1)
		}
	}
	if limiter.Allow() {
		t.Fatal("expected limit after burst exhausted")
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if !rl.getLimiter("10.0.0.1").Allow() {
		t.Fatal("first client should pass")
	}
	if !rl.getLimiter("10.0.0.2").Allow() {
		t.Fatal("second client must have its own bucket")
	}
	if rl.getLimiter("10.0.0.1").Allow() {
		t.Fatal("first client should now be limited")
	}
}
