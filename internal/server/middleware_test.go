package server

import (
	"testing"
	"time"
)

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		rl.limiter(ip)
	}
	if !rl.limiter("10.0.0.1").Allow() {
		t.Fatal("Expected first request to be allowed")
	}

	now = now.Add(limiterTTL / 2)
	rl.limiter("10.0.0.2")
	if len(rl.limiters) != 3 {
		t.Fatalf("Expected 3 buckets before the ttl, got %d", len(rl.limiters))
	}

	now = now.Add(limiterTTL / 2)
	rl.limiter("10.0.0.4")
	if len(rl.limiters) != 2 {
		t.Fatalf("Expected idle buckets to be evicted, got %d", len(rl.limiters))
	}
	if _, ok := rl.limiters["10.0.0.2"]; !ok {
		t.Error("Expected recently seen client to be kept")
	}
	if _, ok := rl.limiters["10.0.0.1"]; ok {
		t.Error("Expected idle client to be evicted")
	}
}

func TestRateLimiterKeepsActiveBucket(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	if !rl.limiter("10.0.0.1").Allow() {
		t.Fatal("Expected first request to be allowed")
	}
	now = now.Add(limiterTTL - time.Second)
	if rl.limiter("10.0.0.1") != rl.limiter("10.0.0.1") {
		t.Error("Expected the same bucket for one client")
	}
	if len(rl.limiters) != 1 {
		t.Errorf("Expected one bucket, got %d", len(rl.limiters))
	}
}
