// Package debounce delays a fast-changing value until it has been stable for a fixed interval.
package debounce

import (
	"sync"
	"time"
)

// Debouncer propagates the last value passed to Set once no newer value
// arrived for delay. Intermediate values are dropped, never queued.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	// deliver is held across the staleness check and the fn call, so Close
	// can wait out a delivery that already passed the check.
	deliver sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending T
	hasPend bool
	closed  bool
}

// New returns a Debouncer calling fn with each settled value.
// fn runs on the timer goroutine, or on the caller's goroutine for Flush,
// and must not call Close.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if fn == nil {
		fn = func(T) {}
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Set restarts the wait with v.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending, d.hasPend = v, true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Flush settles the pending value now and reports whether there was one.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.closed || !d.hasPend {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.mu.Unlock()
	return d.fire(seq)
}

// fire delivers the pending value unless a later Set, Flush or Close superseded seq.
func (d *Debouncer[T]) fire(seq uint64) bool {
	d.deliver.Lock()
	defer d.deliver.Unlock()

	d.mu.Lock()
	if d.closed || seq != d.seq || !d.hasPend {
		d.mu.Unlock()
		return false
	}
	v := d.pending
	d.hasPend = false
	var zero T
	d.pending = zero
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Close cancels any pending update and waits for a delivery in progress.
// No fn call starts or runs after Close returns. Safe to call more than once.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.seq++
		d.hasPend = false
		if d.timer != nil {
			d.timer.Stop()
			d.timer = nil
		}
	}
	d.mu.Unlock()

	// Wait for a fire that passed its check before closed was set.
	d.deliver.Lock()
	d.deliver.Unlock()
}
