package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("key") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("key") {
		t.Error("request over the limit should be blocked")
	}
	if !l.Allow("other") {
		t.Error("a different key should not be affected")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)

	if !l.Allow("key") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("key") {
		t.Fatal("second request should be blocked")
	}

	l.Reset("key")
	if !l.Allow("key") {
		t.Error("request after Reset should be allowed")
	}
}

func TestLoginLimiter_BlocksUsername(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)

	req := httptest.NewRequest("POST", "/login", nil)

	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(req, "karim"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if ok, reason := ll.Check(req, "karim"); ok || reason == "" {
		t.Error("third attempt for the same username should be blocked with a reason")
	}

	// Case variations hit the same bucket.
	if ok, _ := ll.Check(req, "KARIM"); ok {
		t.Error("username limit should be case-insensitive")
	}

	ll.ResetUsername("karim")
	if ok, _ := ll.Check(req, "karim"); !ok {
		t.Error("attempt after ResetUsername should be allowed")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Errorf("RemoteAddr: got %q, want %q", got, "10.0.0.1")
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Errorf("X-Forwarded-For: got %q, want %q", got, "203.0.113.7")
	}
}
