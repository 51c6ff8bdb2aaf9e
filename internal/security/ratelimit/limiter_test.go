package ratelimit

import (
	"testing"
	"time"
)

func TestAllowEnforcesWindow(t *testing.T) {
	l := NewLimiter(3, 100*time.Millisecond)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("u1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("u1") {
		t.Fatalf("fourth request should be limited")
	}

	// Other keys are unaffected
	if !l.Allow("u2") {
		t.Fatalf("different key should be allowed")
	}

	time.Sleep(120 * time.Millisecond)
	if !l.Allow("u1") {
		t.Fatalf("request should be allowed after the window passes")
	}
}

func TestEmptyKeyIsNeverLimited(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if !l.Allow("") {
			t.Fatalf("empty key must never be limited")
		}
	}
}

func TestAllowStrictUsesSeparateBuckets(t *testing.T) {
	l := NewLimiter(100, time.Minute)
	defer l.Stop()

	if !l.AllowStrict("1.2.3.4", 1, time.Minute) {
		t.Fatalf("first strict request should be allowed")
	}
	if l.AllowStrict("1.2.3.4", 1, time.Minute) {
		t.Fatalf("second strict request should be limited")
	}

	// The default allowance for the same identifier is untouched
	if !l.Allow("1.2.3.4") {
		t.Fatalf("default allowance should be independent of strict bucket")
	}
}
