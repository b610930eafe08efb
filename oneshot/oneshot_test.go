package oneshot_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/creachadair/rawsync"
	"github.com/creachadair/rawsync/oneshot"
	"github.com/fortytw2/leaktest"
)

// counted is a payload that records how many times it was released.
type counted struct {
	name   string
	closes *atomic.Int32
	err    error
}

func (c counted) Close() error { c.closes.Add(1); return c.err }

func newCounted(name string) (counted, *atomic.Int32) {
	n := new(atomic.Int32)
	return counted{name: name, closes: n}, n
}

func checkCloses(t *testing.T, n *atomic.Int32, want int32) {
	t.Helper()
	if got := n.Load(); got != want {
		t.Errorf("Release count: got %d, want %d", got, want)
	}
}

const message = "Message text"

func TestChannel(t *testing.T) {
	defer leaktest.Check(t)()

	t.Run("RoundTrip", func(t *testing.T) {
		c := oneshot.New[string]()
		if c.IsReady() {
			t.Error("IsReady on a new channel reported true")
		}
		if err := c.Send(message); err != nil {
			t.Fatalf("Send: unexpected error: %v", err)
		}
		if !c.IsReady() {
			t.Error("IsReady after Send reported false")
		}
		got, err := c.Receive()
		if err != nil || got != message {
			t.Errorf("Receive: got %q, %v; want %q, nil", got, err, message)
		}
		if c.IsReady() {
			t.Error("IsReady after Receive reported true")
		}
	})

	t.Run("DoubleSend", func(t *testing.T) {
		var c oneshot.Channel[string]
		if err := c.Send("first"); err != nil {
			t.Fatalf("Send: unexpected error: %v", err)
		}
		if err := c.Send("second"); !errors.Is(err, oneshot.ErrAlreadySent) {
			t.Errorf("Second send: got %v, want %v", err, oneshot.ErrAlreadySent)
		}
		if got, err := c.Receive(); err != nil || got != "first" {
			t.Errorf("Receive: got %q, %v; want first, nil", got, err)
		}

		// A received channel does not accept another message.
		if err := c.Send("third"); !errors.Is(err, oneshot.ErrAlreadySent) {
			t.Errorf("Send after Receive: got %v, want %v", err, oneshot.ErrAlreadySent)
		}
	})

	t.Run("EarlyReceive", func(t *testing.T) {
		c := oneshot.New[int]()
		if got, err := c.Receive(); !errors.Is(err, oneshot.ErrNotReady) || got != 0 {
			t.Errorf("Receive: got %v, %v; want 0, %v", got, err, oneshot.ErrNotReady)
		}
	})

	t.Run("DoubleReceive", func(t *testing.T) {
		c := oneshot.New[int]()
		c.Send(12345)
		if got, err := c.Receive(); err != nil || got != 12345 {
			t.Errorf("Receive: got %v, %v; want 12345, nil", got, err)
		}
		if _, err := c.Receive(); !errors.Is(err, oneshot.ErrNotReady) {
			t.Errorf("Second receive: got %v, want %v", err, oneshot.ErrNotReady)
		}
	})

	t.Run("Unchecked", func(t *testing.T) {
		c := oneshot.New[[]string]()
		c.SendUnchecked([]string{"apple", "pear"})
		if !c.IsReady() {
			t.Fatal("IsReady after SendUnchecked reported false")
		}
		got := c.ReceiveUnchecked()
		if len(got) != 2 || got[0] != "apple" || got[1] != "pear" {
			t.Errorf("ReceiveUnchecked: got %q, want [apple pear]", got)
		}
		if c.IsReady() {
			t.Error("IsReady after ReceiveUnchecked reported true")
		}
	})
}

func TestChannel_Close(t *testing.T) {
	t.Run("Pending", func(t *testing.T) {
		msg, n := newCounted("pending")
		c := oneshot.New[counted]()
		c.Send(msg)
		if err := c.Close(); err != nil {
			t.Errorf("Close: unexpected error: %v", err)
		}
		checkCloses(t, n, 1)

		// Closing again does not release twice.
		c.Close()
		checkCloses(t, n, 1)

		if err := c.Send(msg); !errors.Is(err, oneshot.ErrClosed) {
			t.Errorf("Send after Close: got %v, want %v", err, oneshot.ErrClosed)
		}
	})

	t.Run("NeverSent", func(t *testing.T) {
		_, n := newCounted("unused")
		c := oneshot.New[counted]()
		if err := c.Close(); err != nil {
			t.Errorf("Close: unexpected error: %v", err)
		}
		checkCloses(t, n, 0)
	})

	t.Run("Received", func(t *testing.T) {
		msg, n := newCounted("received")
		c := oneshot.New[counted]()
		c.Send(msg)
		got, err := c.Receive()
		if err != nil || got.name != "received" {
			t.Fatalf("Receive: got %q, %v; want received, nil", got.name, err)
		}
		c.Close()
		checkCloses(t, n, 0) // the receiver owns it now
	})

	t.Run("Error", func(t *testing.T) {
		msg, n := newCounted("broken")
		msg.err = errors.New("release failed")
		c := oneshot.New[counted]()
		c.Send(msg)
		if err := c.Close(); !errors.Is(err, msg.err) {
			t.Errorf("Close: got %v, want %v", err, msg.err)
		}
		checkCloses(t, n, 1)
	})
}

func TestChannel_Concurrent(t *testing.T) {
	defer leaktest.Check(t)()

	c := oneshot.New[string]()
	p := rawsync.NewParker()
	go func() {
		if err := c.Send(message); err != nil {
			t.Errorf("Send: unexpected error: %v", err)
		}
		p.Unpark()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.ParkUntil(ctx, c.IsReady); err != nil {
		t.Fatalf("Waiting for message: %v", err)
	}
	if got, err := c.Receive(); err != nil || got != message {
		t.Errorf("Receive: got %q, %v; want %q, nil", got, err, message)
	}
}
