package smartpoll

import "context"

// PollResult models the outcome of a single PollFunc call: either no
// payload is available yet (Empty), or exactly one payload is (Present).
type PollResult[T any] struct {
	payload T
	ok      bool
}

// Empty constructs a PollResult indicating no payload is available.
func Empty[T any]() PollResult[T] {
	return PollResult[T]{}
}

// Present constructs a PollResult carrying payload.
func Present[T any](payload T) PollResult[T] {
	return PollResult[T]{payload: payload, ok: true}
}

// Get returns the payload and whether one was present, following the
// comma-ok idiom.
func (r PollResult[T]) Get() (payload T, ok bool) {
	return r.payload, r.ok
}

// PollFunc is the contract a Driver drives. It must be safe to call
// repeatedly, from a single goroutine at a time, and must be total: "no
// payload right now" is signaled by returning Empty, never an error. An
// error return is reserved for genuine, fatal failure of the underlying
// source (see PollFunctionFailure), and terminates the Driver's loop.
//
// ctx carries the Driver's lifetime, for PollFunc implementations that
// perform their own blocking I/O; the Driver never force-cancels a poll
// that is already in flight because of Stop, it only makes cancellation
// observable to the PollFunc itself.
type PollFunc[T any] func(ctx context.Context) (PollResult[T], error)
