package buffer

import (
	"sync"
	"time"
)

// Debouncer delivers only the last value set within the delay window
// to its sink. One Debouncer per target field replaces the copied
// per-field timers the UI variants used to carry.
type Debouncer struct {
	delay time.Duration
	sink  func(string)

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debounced sink with the given delay.
func NewDebouncer(delay time.Duration, sink func(string)) *Debouncer {
	if delay <= 0 {
		delay = 150 * time.Millisecond
	}
	return &Debouncer{delay: delay, sink: sink}
}

// Set schedules value for delivery, replacing any pending value.
func (d *Debouncer) Set(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.sink(value)
	})
}

// Stop cancels any pending delivery.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
