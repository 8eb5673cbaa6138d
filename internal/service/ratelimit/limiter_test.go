package ratelimit

import (
    "testing"
    "time"
)

func TestAllowPerKey(t *testing.T) {
    now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
    l := New(time.Minute, 2)
    l.now = func() time.Time { return now }

    if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
        t.Fatalf("burst of 2 should be allowed")
    }
    if l.Allow("10.0.0.1") {
        t.Fatalf("third request inside the window should be rejected")
    }
    if !l.Allow("10.0.0.2") {
        t.Fatalf("other keys have their own bucket")
    }

    now = now.Add(time.Minute)
    if !l.Allow("10.0.0.1") {
        t.Fatalf("token should refill after one interval")
    }
}

func TestZeroIntervalDisables(t *testing.T) {
    l := New(0, 1)
    for i := 0; i < 10; i++ {
        if !l.Allow("k") {
            t.Fatalf("limiter with zero interval must allow everything")
        }
    }
}
