// Package oneshot implements channels that deliver exactly one value from a
// sender to a receiver without blocking.
//
// A [Channel] exposes both ends on one shared value. [Split] divides the ends
// between a [Sender] and a [Receiver] handle, each of which may be used once.
//
// Neither form blocks. A receiver that wants to wait polls IsReady, possibly
// parking between polls (see [rawsync.Parker]).
//
// [rawsync.Parker]: https://pkg.go.dev/github.com/creachadair/rawsync#Parker
package oneshot

import (
	"errors"
	"io"
	"sync/atomic"

	"github.com/creachadair/mds/value"
)

var (
	// ErrAlreadySent is reported by a second call to [Channel.Send].
	ErrAlreadySent = errors.New("oneshot: message already sent")

	// ErrNotReady is reported by a receive when no message has been sent, or
	// when the message was already received.
	ErrNotReady = errors.New("oneshot: message not ready")

	// ErrClosed is reported by a send on a closed [Channel].
	ErrClosed = errors.New("oneshot: channel is closed")

	// ErrSenderUsed is reported when a [Sender] is used after it was consumed.
	ErrSenderUsed = errors.New("oneshot: sender already used")

	// ErrReceiverUsed is reported when a [Receiver] is used after it was
	// consumed.
	ErrReceiverUsed = errors.New("oneshot: receiver already used")
)

// A Channel carries a single message of type T. A zero Channel is empty and
// ready for use, but must not be copied after first use.
//
// Send may be called at most once, and Receive succeeds at most once after
// the message is ready. Send and Receive may be called concurrently from
// different goroutines.
type Channel[T any] struct {
	inUse  atomic.Bool // set by the first send
	ready  atomic.Bool // set when the slot holds an unreceived message
	closed atomic.Bool

	slot value.Maybe[T] // written before ready is set, read after it is cleared
}

// New constructs a new empty Channel.
func New[T any]() *Channel[T] { return new(Channel[T]) }

// IsReady reports whether a message is available to receive. The result is
// advisory: it may be stale by the time the caller acts on it.
func (c *Channel[T]) IsReady() bool { return c.ready.Load() }

// Send stores msg in c and makes it available to the receiver. If a message
// was already sent, Send reports ErrAlreadySent and the earlier message is
// unaffected. If c is closed, Send reports ErrClosed.
func (c *Channel[T]) Send(msg T) error {
	if c.closed.Load() {
		return ErrClosed
	} else if c.inUse.Swap(true) {
		return ErrAlreadySent
	}
	c.SendUnchecked(msg)
	return nil
}

// SendUnchecked stores msg in c without checking for a previous send.
//
// The caller must ensure SendUnchecked and Send are called at most once in
// total on c. Violating this is a data race on the message slot.
func (c *Channel[T]) SendUnchecked(msg T) {
	c.slot = value.Just(msg)
	c.ready.Store(true) // publishes slot
}

// Receive removes and returns the message from c. If no message is ready,
// Receive returns a zero value and ErrNotReady.
func (c *Channel[T]) Receive() (T, error) {
	if !c.ready.Swap(false) {
		var zero T
		return zero, ErrNotReady
	}
	return c.take(), nil
}

// ReceiveUnchecked removes and returns the message from c without checking
// that one is ready.
//
// The caller must ensure that IsReady has reported true and that no other
// receive has taken the message. Violating this is a data race on the
// message slot, and may return a zero value.
func (c *Channel[T]) ReceiveUnchecked() T {
	c.ready.Swap(false) // N.B. the swap synchronizes with the sender's store
	return c.take()
}

func (c *Channel[T]) take() T {
	msg := c.slot.Get()
	c.slot = value.Absent[T]()
	return msg
}

// Close discards c. If a message was sent but never received, Close releases
// it: if the message implements [io.Closer], its Close method is called and
// its error is returned. If no message is pending, Close does nothing.
//
// Close must not be called concurrently with any other method of c. After
// Close, Send reports ErrClosed. Close is safe to call more than once.
func (c *Channel[T]) Close() error {
	c.closed.Store(true)
	c.inUse.Store(true)
	if !c.ready.Swap(false) {
		return nil
	}
	return release(c.take())
}

// release finalizes an undelivered message.
func release[T any](msg T) error {
	if c, ok := any(msg).(io.Closer); ok {
		return c.Close()
	}
	return nil
}
