package smartpoll

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// exitHook is one Driver's registration in exitRegistry. active tracks
// whether it should still run on process exit; entries are never removed
// from the slice, only defused through the unregister closure that holds
// the entry's pointer.
type exitHook struct {
	cancel func()
	active bool
}

// exitRegistry backs Config.CancelOnExit. It is explicit opt-in per
// Driver, not an ambient singleton: only drivers constructed with
// CancelOnExit set ever get added to it, and the signal.Notify listener
// itself is installed lazily, once, only if at least one driver opts in.
var (
	exitRegistryMu sync.Mutex
	exitRegistry   []*exitHook
	exitHookOnce   sync.Once
)

// registerProcessExitCancel arranges for cancel to run when the process
// receives SIGINT or SIGTERM. The returned unregister func defuses the
// hook, e.g. once the owning Driver has already finished by other means,
// so it stops being reachable from exitRegistry and can be collected.
func registerProcessExitCancel(cancel func()) (unregister func()) {
	hook := &exitHook{cancel: cancel, active: true}

	exitRegistryMu.Lock()
	exitRegistry = append(exitRegistry, hook)
	exitRegistryMu.Unlock()

	exitHookOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-ch
			exitRegistryMu.Lock()
			hooks := append([]*exitHook{}, exitRegistry...)
			exitRegistryMu.Unlock()
			for _, h := range hooks {
				if h.active {
					h.cancel()
				}
			}
		}()
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			exitRegistryMu.Lock()
			hook.active = false
			hook.cancel = nil
			exitRegistryMu.Unlock()
		})
	}
}

// activeExitRegistrations reports how many currently-registered hooks are
// still active (used by tests to confirm self-stop paths defuse theirs).
func activeExitRegistrations() int {
	exitRegistryMu.Lock()
	defer exitRegistryMu.Unlock()
	n := 0
	for _, h := range exitRegistry {
		if h.active {
			n++
		}
	}
	return n
}
