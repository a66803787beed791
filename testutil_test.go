package smartpoll

import (
	"runtime"
	"testing"
	"time"
)

// checkNumGoroutines returns a func to be deferred immediately after
// capturing a baseline goroutine count; it fails the test if the number of
// goroutines hasn't returned to baseline within timeout, polling briefly
// since goroutine teardown (e.g. via Stop) isn't instantaneous.
func checkNumGoroutines(timeout time.Duration) func(t *testing.T) {
	baseline := runtime.NumGoroutine()
	return func(t *testing.T) {
		t.Helper()
		deadline := time.Now().Add(timeout)
		for {
			if n := runtime.NumGoroutine(); n <= baseline {
				return
			}
			if time.Now().After(deadline) {
				t.Errorf("goroutine leak: baseline %d, now %d", baseline, runtime.NumGoroutine())
				return
			}
			time.Sleep(time.Millisecond * 5)
		}
	}
}
