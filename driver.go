package smartpoll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config models optional (and one required) construction-time
// configuration for New. MaxIdleDelay is required; New panics if it is
// not positive, the same way microbatch.NewBatcher panics on an invalid
// BatcherConfig.
type Config struct {
	// MaxIdleDelay upper-bounds the sleep between empty polls. Required:
	// must be > 0.
	MaxIdleDelay time.Duration

	// Backoff overrides the default back-off curve. Defaults to
	// DefaultBackoff, if nil.
	Backoff BackoffPolicy

	// CancelOnExit, if true, registers the Driver for cancellation when
	// the process receives SIGINT or SIGTERM. See exit.go.
	CancelOnExit bool
}

// Driver is a single-use, smart-polling coordinator over a
// PollFunc. Construct one with New, then call exactly one of
// WaitForPayload or StartNotificationLoop.
type Driver[T any] struct {
	pollFn       PollFunc[T]
	backoff      BackoffPolicy
	maxIdleDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	started atomic.Bool
	mode    atomic.Int32

	emptyCount   atomic.Int64
	emptyTotal   atomic.Int64
	payloadTotal atomic.Int64

	done       chan struct{}
	doneOnce   sync.Once
	cancelOnce sync.Once

	failureMu  sync.Mutex
	failureErr error

	unregisterExit func()
}

// New constructs an Idle Driver around pollFn, configured by cfg. It
// panics if pollFn is nil or cfg.MaxIdleDelay is not positive: these are
// construction-time configuration errors, not runtime conditions a caller
// should need to check for via a returned error.
func New[T any](pollFn PollFunc[T], cfg Config) *Driver[T] {
	if pollFn == nil {
		panic("smartpoll: nil poll function")
	}
	if cfg.MaxIdleDelay <= 0 {
		panic("smartpoll: MaxIdleDelay must be > 0")
	}

	backoff := cfg.Backoff
	if backoff == nil {
		backoff = DefaultBackoff
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Driver[T]{
		pollFn:       pollFn,
		backoff:      backoff,
		maxIdleDelay: cfg.MaxIdleDelay,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	d.mode.Store(int32(ModeIdle))

	if cfg.CancelOnExit {
		d.unregisterExit = registerProcessExitCancel(d.requestCancel)
	}

	return d
}

// Mode reports the Driver's current lifecycle state.
func (d *Driver[T]) Mode() Mode {
	return Mode(d.mode.Load())
}

// EmptyPollCount is the lifetime count of empty PollFunc returns. Readers
// observe an eventually-consistent, monotonically non-decreasing value;
// it is advisory, not transactionally tied to payload delivery.
func (d *Driver[T]) EmptyPollCount() int64 {
	return d.emptyTotal.Load()
}

// PayloadPollCount is the lifetime count of PollFunc returns that carried
// a payload.
func (d *Driver[T]) PayloadPollCount() int64 {
	return d.payloadTotal.Load()
}

// WaitForPayload blocks until pollFn produces a payload, or the Driver is
// canceled (via ctx, Stop, or a process-exit signal if Config.CancelOnExit
// was set), whichever comes first. It transitions Idle -> BlockingWait ->
// Stopped, and self-stops on return: a second call, from any goroutine,
// always fails with a *MisuseError.
//
// ok is true only when payload is valid. If the Driver was canceled
// before any payload arrived, ok is false and err is nil: cancellation is
// a normal termination, not a failure. If pollFn itself failed, err is a
// *PollFunctionFailure.
func (d *Driver[T]) WaitForPayload(ctx context.Context) (payload T, ok bool, err error) {
	if !d.started.CompareAndSwap(false, true) {
		return payload, false, &MisuseError{Op: "WaitForPayload", Msg: "driver already started"}
	}

	d.mode.Store(int32(ModeBlockingWait))
	stopWatch := d.watchExternalCancel(ctx)
	defer stopWatch()
	defer d.requestCancel()
	defer d.closeDone()
	defer d.mode.Store(int32(ModeStopped))
	defer d.unregisterFromExit()

	for {
		if d.ctx.Err() != nil {
			return payload, false, nil
		}

		v, present, perr := d.pollOnce()
		if perr != nil {
			failure := &PollFunctionFailure{Err: perr}
			d.setFailure(failure)
			return payload, false, failure
		}
		if present {
			return v, true, nil
		}

		if d.ctx.Err() != nil {
			return payload, false, nil
		}
	}
}

// StartNotificationLoop starts a background goroutine that invokes
// handler for every payload pollFn produces, in arrival order, until Stop
// is called (or the Driver is otherwise canceled). It transitions Idle ->
// LoopRunning and returns immediately; a second call, or a nil handler,
// fails with a *MisuseError without starting anything.
//
// Handler invocations run on the poll goroutine: the next poll is blocked
// until handler returns, giving callers a natural back-pressure signal. A
// handler that needs its own concurrency must fan out itself.
func (d *Driver[T]) StartNotificationLoop(ctx context.Context, handler func(T) error) error {
	if handler == nil {
		return &MisuseError{Op: "StartNotificationLoop", Msg: "nil handler"}
	}
	if !d.started.CompareAndSwap(false, true) {
		return &MisuseError{Op: "StartNotificationLoop", Msg: "driver already started"}
	}

	d.mode.Store(int32(ModeLoopRunning))
	stopWatch := d.watchExternalCancel(ctx)

	go func() {
		defer stopWatch()
		defer d.requestCancel()
		defer d.closeDone()
		defer d.mode.Store(int32(ModeStopped))
		defer d.unregisterFromExit()

		d.runLoop(func(payload T) bool {
			if err := handler(payload); err != nil {
				d.setFailure(&HandlerFailure{Err: err})
				return false
			}
			return true
		})
	}()

	return nil
}

// Stop signals cancellation, waits for any background worker to exit, and
// returns the first captured PollFunctionFailure or HandlerFailure, if
// any. It is idempotent: a second call is a no-op that returns the same
// result. Calling Stop before StartNotificationLoop/WaitForPayload is
// safe, and permanently transitions the Driver to Stopped without ever
// running the loop.
func (d *Driver[T]) Stop() error {
	d.requestCancel()

	if d.started.CompareAndSwap(false, true) {
		// never started: nothing to join, finalize directly.
		d.mode.Store(int32(ModeStopped))
		d.closeDone()
	}

	<-d.done

	d.unregisterFromExit()

	return d.loadFailure()
}

// unregisterFromExit defuses this Driver's process-exit cancellation hook,
// if Config.CancelOnExit registered one. Called from every path that
// finalizes the Driver (Stop, and the self-stop defers in WaitForPayload
// and StartNotificationLoop's goroutine), so a CancelOnExit Driver never
// outlives its own use by staying pinned in the package-level registry.
func (d *Driver[T]) unregisterFromExit() {
	if d.unregisterExit != nil {
		d.unregisterExit()
	}
}

// runLoop drives pollFn until dispatch returns false or the Driver is
// canceled. dispatch is called only for present payloads, in the order
// pollFn produced them.
func (d *Driver[T]) runLoop(dispatch func(T) bool) {
	for {
		if d.ctx.Err() != nil {
			return
		}

		v, present, err := d.pollOnce()
		if err != nil {
			d.setFailure(&PollFunctionFailure{Err: err})
			return
		}
		if present {
			if !dispatch(v) {
				return
			}
			continue
		}

		if d.ctx.Err() != nil {
			return
		}
	}
}

// pollOnce calls pollFn exactly once, updating counters and, on Empty,
// sleeping per the back-off policy before returning. It never sleeps
// before the first attempt and always resets emptyCount on a payload.
func (d *Driver[T]) pollOnce() (payload T, ok bool, err error) {
	result, perr := d.pollFn(d.ctx)
	if perr != nil {
		return payload, false, perr
	}

	v, present := result.Get()
	if present {
		d.payloadTotal.Add(1)
		d.emptyCount.Store(0)
		return v, true, nil
	}

	d.emptyTotal.Add(1)
	n := d.emptyCount.Add(1)
	delay := d.backoff(n, d.maxIdleDelay)
	sleepCtx(d.ctx, delay)

	return payload, false, nil
}

func (d *Driver[T]) requestCancel() {
	d.cancelOnce.Do(d.cancel)
}

func (d *Driver[T]) closeDone() {
	d.doneOnce.Do(func() { close(d.done) })
}

func (d *Driver[T]) setFailure(err error) {
	d.failureMu.Lock()
	if d.failureErr == nil {
		d.failureErr = err
	}
	d.failureMu.Unlock()
}

func (d *Driver[T]) loadFailure() error {
	d.failureMu.Lock()
	defer d.failureMu.Unlock()
	return d.failureErr
}

// watchExternalCancel ties ctx's cancellation to the Driver's own cancel,
// so WaitForPayload/StartNotificationLoop callers can use a
// context.WithTimeout/WithCancel in place of the external-timer-plus-Stop
// construction described by the original design. The returned stop func
// must be called once the caller no longer needs the watch (the loop has
// exited on its own), to avoid leaking the watcher goroutine.
func (d *Driver[T]) watchExternalCancel(ctx context.Context) (stop func()) {
	if ctx == nil || ctx.Done() == nil {
		return func() {}
	}

	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			d.requestCancel()
		case <-watchDone:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(watchDone) })
	}
}
