package smartpoll

import (
	"context"
	"testing"
	"time"
)

func TestSleepCtx_Timeout(t *testing.T) {
	start := time.Now()
	reason := sleepCtx(context.Background(), 20*time.Millisecond)
	if reason != wokeTimeout {
		t.Fatalf("expected wokeTimeout, got %v", reason)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned too early: %s", elapsed)
	}
}

func TestSleepCtx_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	reason := sleepCtx(ctx, time.Second)
	if reason != wokeCanceled {
		t.Fatalf("expected wokeCanceled, got %v", reason)
	}
	if elapsed := time.Since(start); elapsed > 60*time.Millisecond {
		t.Errorf("cancellation not prompt: %s", elapsed)
	}
}

func TestSleepCtx_AlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if reason := sleepCtx(ctx, time.Second); reason != wokeCanceled {
		t.Fatalf("expected wokeCanceled, got %v", reason)
	}
}

func TestSleepCtx_ZeroDuration(t *testing.T) {
	if reason := sleepCtx(context.Background(), 0); reason != wokeTimeout {
		t.Fatalf("expected wokeTimeout, got %v", reason)
	}
}
