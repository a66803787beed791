package smartpoll

import (
	"testing"
	"time"
)

func TestDefaultBackoff_FirstAttemptNeverSleeps(t *testing.T) {
	if d := DefaultBackoff(0, time.Second); d != 0 {
		t.Errorf("expected 0, got %s", d)
	}
}

func TestDefaultBackoff_MonotonicAndCapped(t *testing.T) {
	const cap = 500 * time.Millisecond
	var prev time.Duration
	for n := int64(1); n <= 20; n++ {
		d := DefaultBackoff(n, cap)
		if d < prev {
			t.Fatalf("emptyCount=%d: delay %s < previous %s", n, d, prev)
		}
		if d > cap {
			t.Fatalf("emptyCount=%d: delay %s exceeds cap %s", n, d, cap)
		}
		prev = d
	}
}

func TestDefaultBackoff_ReachesCapWithinK(t *testing.T) {
	for _, cap := range []time.Duration{50 * time.Millisecond, 200 * time.Millisecond, 500 * time.Millisecond, 5 * time.Second} {
		reached := false
		for n := int64(1); n <= 20; n++ {
			if DefaultBackoff(n, cap) == cap {
				reached = true
				break
			}
		}
		if !reached {
			t.Errorf("cap %s: never reached within K=20", cap)
		}
	}
}

func TestDefaultBackoff_NonPositiveMaxIdleDelay(t *testing.T) {
	if d := DefaultBackoff(5, 0); d != 0 {
		t.Errorf("expected 0 for non-positive maxIdleDelay, got %s", d)
	}
}
