// Package spin implements a busy-waiting mutual exclusion lock.
//
// A spin lock never parks the calling goroutine: a goroutine that finds the
// lock held retries until it succeeds. This is cheap when critical sections
// are very short and contention is low, and wasteful otherwise.
//
// There is no poisoning. If a goroutine acquires a lock and never releases it
// (for example, because it exits without calling Unlock), every later call to
// Lock spins forever. Use [Lock.With] or defer [Guard.Unlock] to make sure the
// lock is released on every path, including a panic.
package spin

import (
	"runtime"
	"sync/atomic"
)

// A Flag is a bare spin lock with no associated data. A zero Flag is unlocked
// and ready for use, but must not be copied after first use.
//
// The caller is responsible for ensuring that any data the flag protects is
// only accessed while the flag is held.
type Flag struct {
	locked atomic.Bool
}

// Lock acquires f, spinning until it is available. There is no upper bound on
// the number of attempts.
func (f *Flag) Lock() {
	for !f.locked.CompareAndSwap(false, true) {
		spinHint()
	}
}

// TryLock makes a single attempt to acquire f, and reports whether it
// succeeded.
func (f *Flag) TryLock() bool { return f.locked.CompareAndSwap(false, true) }

// Unlock releases f. The caller must hold f; Unlock panics if f is not locked.
func (f *Flag) Unlock() {
	if !f.locked.Swap(false) {
		panic("spin: unlock of unlocked spin lock")
	}
}

// spinHint signals that the caller is busy-waiting.
//
// Go does not expose a processor pause instruction, so this yields the
// processor instead, which keeps a spinning goroutine from starving the
// holder when GOMAXPROCS is small.
func spinHint() { runtime.Gosched() }

// A Lock is a spin lock guarding a value of type T. A zero Lock is unlocked,
// holds the zero value of T, and is ready for use. A Lock must not be copied
// after first use.
//
// The value is only reachable through a [Guard], so at most one goroutine at
// a time can observe it. T need not be safe for concurrent use.
type Lock[T any] struct {
	flag  Flag
	value T // guarded by flag
}

// New constructs an unlocked Lock holding init.
func New[T any](init T) *Lock[T] { return &Lock[T]{value: init} }

// Lock acquires l, spinning until it is available, and returns a guard for
// the protected value. Lock never fails; if l is never released, Lock never
// returns.
func (l *Lock[T]) Lock() *Guard[T] {
	l.flag.Lock()
	return &Guard[T]{lock: l, held: true}
}

// TryLock makes a single attempt to acquire l. If it succeeds, it returns a
// guard and true; otherwise it returns nil, false.
func (l *Lock[T]) TryLock() (*Guard[T], bool) {
	if !l.flag.TryLock() {
		return nil, false
	}
	return &Guard[T]{lock: l, held: true}, true
}

// With acquires l, calls f with a pointer to the protected value, and then
// releases l. The lock is released even if f panics. The pointer must not be
// retained after f returns.
func (l *Lock[T]) With(f func(*T)) {
	g := l.Lock()
	defer g.Unlock()
	f(g.Ptr())
}

// A Guard represents exclusive access to the value protected by a [Lock]. A
// guard exists only while its lock is held, and can only be obtained from
// [Lock.Lock] or [Lock.TryLock].
//
// A guard belongs to the goroutine that acquired it and is not safe for
// concurrent use. Release it exactly once by calling Unlock.
type Guard[T any] struct {
	lock *Lock[T]
	held bool
}

func (g *Guard[T]) checkHeld() {
	if !g.held {
		panic("spin: use of released guard")
	}
}

// Get returns a copy of the protected value.
func (g *Guard[T]) Get() T { g.checkHeld(); return g.lock.value }

// Set replaces the protected value with v.
func (g *Guard[T]) Set(v T) { g.checkHeld(); g.lock.value = v }

// Ptr returns a pointer to the protected value. The pointer is valid only
// until g is released, and must not be used after that.
func (g *Guard[T]) Ptr() *T { g.checkHeld(); return &g.lock.value }

// Unlock releases the lock held by g. Unlock panics if g was already
// released.
func (g *Guard[T]) Unlock() {
	g.checkHeld()
	g.held = false
	g.lock.flag.Unlock()
}
