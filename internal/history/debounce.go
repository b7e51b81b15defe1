package history

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a pending save runs.
const DefaultDelay = 300 * time.Millisecond

// Debouncer runs a save function once input has been quiet for a delay.
// Every Trigger cancels the pending save and schedules a new one, so only
// the trailing edge fires.
type Debouncer struct {
	mu      sync.Mutex
	clock   Clock
	delay   time.Duration
	save    func()
	timer   Timer
	gen     uint64 // bumped on every reschedule; stale timer fires compare it
	pending bool
}

// NewDebouncer returns a debouncer calling save after delay. A nil clock
// uses RealClock; a non-positive delay uses DefaultDelay.
func NewDebouncer(clock Clock, delay time.Duration, save func()) *Debouncer {
	if clock == nil {
		clock = RealClock{}
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{clock: clock, delay: delay, save: save}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()
	d.save()
}

// Flush runs a pending save immediately. It reports whether one ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	d.stopLocked()
	d.gen++
	d.pending = false
	d.mu.Unlock()
	d.save()
	return true
}

// Cancel drops a pending save without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
	d.pending = false
}

// Pending reports whether a save is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
