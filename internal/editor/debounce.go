package editor

import (
	"sync"
	"time"
)

// Debouncer runs fn once delay has passed without another Trigger.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
	gen   uint64
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Flush runs the pending call now and reports whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	pending := d.timer != nil
	d.stopLocked()
	d.mu.Unlock()

	if pending {
		d.fn()
	}
	return pending
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// stopLocked invalidates the armed timer. A timer that already fired but
// has not taken the lock sees a stale generation and does nothing.
func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.gen++
	d.mu.Unlock()

	d.fn()
}
