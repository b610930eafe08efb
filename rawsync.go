// Package rawsync provides minimal synchronization primitives built directly
// on atomic flags.
//
// The [spin] package implements a busy-waiting lock with a scoped guard. The
// [oneshot] package implements non-blocking channels that carry exactly one
// value. This package provides a [Parker], which callers may use to sleep
// while polling those primitives.
//
// [spin]: https://pkg.go.dev/github.com/creachadair/rawsync/spin
// [oneshot]: https://pkg.go.dev/github.com/creachadair/rawsync/oneshot
package rawsync

import "context"

// A Parker lets a goroutine sleep until another goroutine wakes it. It holds
// at most one wakeup token: Unpark deposits the token, and Park consumes it.
//
// Unparking a Parker that already holds a token has no effect, so a wakeup
// that arrives before Park is not lost, but multiple wakeups are coalesced.
// Callers should re-check the condition they are waiting for after Park
// returns.
type Parker struct {
	ch chan struct{}
}

// NewParker constructs a new Parker with no token.
func NewParker() *Parker { return &Parker{ch: make(chan struct{}, 1)} }

// Unpark deposits a wakeup token, and reports whether it was buffered (true)
// or coalesced with a token already present (false). Unpark does not block.
func (p *Parker) Unpark() bool {
	select {
	case p.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Park blocks until a wakeup token is available and consumes it, or until
// ctx ends. It returns nil if a token was consumed, otherwise the error that
// ended ctx.
func (p *Parker) Park(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ch:
		return nil
	}
}

// ParkUntil parks repeatedly until cond reports true or ctx ends. It checks
// cond before each park.
func (p *Parker) ParkUntil(ctx context.Context, cond func() bool) error {
	for !cond() {
		if err := p.Park(ctx); err != nil {
			return err
		}
	}
	return nil
}
