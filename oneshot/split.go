package oneshot

import (
	"errors"
	"sync/atomic"

	"github.com/creachadair/mds/value"
)

// record is the state shared by a Sender and a Receiver.
type record[T any] struct {
	ready atomic.Bool
	slot  value.Maybe[T]
	refs  atomic.Int32 // live handles
}

// drop releases one handle's reference to r. The last handle to go releases
// any message that was sent but not received.
func (r *record[T]) drop() error {
	if r.refs.Add(-1) != 0 {
		return nil
	}
	if !r.ready.Swap(false) {
		return nil
	}
	msg := r.slot.Get()
	r.slot = value.Absent[T]()
	return release(msg)
}

// Split constructs a new one-shot channel and returns its sending and
// receiving handles. Each handle may be used exactly once, and may be passed
// to a different goroutine than the other.
//
// The shared channel state is released when both handles have been used or
// closed.
func Split[T any]() (*Sender[T], *Receiver[T]) {
	r := new(record[T])
	r.refs.Store(2)
	return &Sender[T]{rec: r}, &Receiver[T]{rec: r}
}

// A Sender is the sending half of a channel created by [Split].
type Sender[T any] struct {
	rec  *record[T]
	used atomic.Bool
}

// Send delivers msg to the receiver and consumes s. If s was already used or
// closed, Send reports ErrSenderUsed and msg is not delivered.
//
// If the receiver has already been used or closed, msg is released at once
// (see [Channel.Close]) and any error from doing so is returned.
func (s *Sender[T]) Send(msg T) error {
	if s.used.Swap(true) {
		return ErrSenderUsed
	}
	s.rec.slot = value.Just(msg)
	s.rec.ready.Store(true)
	return s.rec.drop()
}

// Close consumes s without sending a message. Closing a sender that was
// already used has no effect.
func (s *Sender[T]) Close() error {
	if s.used.Swap(true) {
		return nil
	}
	return s.rec.drop()
}

// A Receiver is the receiving half of a channel created by [Split].
type Receiver[T any] struct {
	rec  *record[T]
	used atomic.Bool
}

// IsReady reports whether a message is available to receive. The result is
// advisory. IsReady reports false once r has been used.
func (r *Receiver[T]) IsReady() bool { return !r.used.Load() && r.rec.ready.Load() }

// Receive consumes r and returns the message sent to it. If r was already
// used or closed, Receive reports ErrReceiverUsed. If no message has been
// sent yet, Receive reports ErrNotReady; r is consumed regardless, so a
// caller should check IsReady first.
func (r *Receiver[T]) Receive() (T, error) {
	var zero T
	if r.used.Swap(true) {
		return zero, ErrReceiverUsed
	}
	if !r.rec.ready.Swap(false) {
		return zero, errors.Join(ErrNotReady, r.rec.drop())
	}
	msg := r.rec.slot.Get()
	r.rec.slot = value.Absent[T]()
	_ = r.rec.drop() // the message is taken; nothing is left to release
	return msg, nil
}

// Close consumes r without receiving. If a message was sent and not
// received, it is released when the sender is also finished. Closing a
// receiver that was already used has no effect.
func (r *Receiver[T]) Close() error {
	if r.used.Swap(true) {
		return nil
	}
	return r.rec.drop()
}
