package hints

import (
	"fmt"
	"testing"
	"time"
)

func TestRateLimiterInterval(t *testing.T) {
	now := time.Now()
	r := NewRateLimiter()
	r.now = func() time.Time { return now }

	if !r.Allow("c1:chat1") {
		t.Fatal("first call should be allowed")
	}
	now = now.Add(5 * time.Second)
	if r.Allow("c1:chat1") {
		t.Fatal("call at 5s should be rejected")
	}
	now = now.Add(5*time.Second + 10*time.Millisecond)
	if !r.Allow("c1:chat1") {
		t.Fatal("call at 10.01s should be allowed")
	}
}

func TestRateLimiterIndependentKeys(t *testing.T) {
	r := NewRateLimiter()
	if !r.Allow("c1:chat1") || !r.Allow("c1:chat2") {
		t.Fatal("different conversations must not share a window")
	}
}

func TestRateLimiterSweep(t *testing.T) {
	now := time.Now()
	r := NewRateLimiter()
	r.now = func() time.Time { return now }

	for i := 0; i < defaultSweepAt; i++ {
		r.Allow(fmt.Sprintf("key-%d", i))
	}
	// All existing entries age past the sweep threshold; the next insert
	// tips the table over the size trigger and sweeps them.
	now = now.Add(defaultSweepAge + time.Second)
	r.Allow("trigger")

	r.mu.Lock()
	size := len(r.last)
	r.mu.Unlock()
	if size != 1 {
		t.Errorf("table size after sweep = %d, want 1", size)
	}
}

func TestRateLimiterClear(t *testing.T) {
	r := NewRateLimiter()
	r.Allow("k")
	r.Clear()
	if !r.Allow("k") {
		t.Error("key should be allowed immediately after clear")
	}
}
