package watch

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of events into a single callback per key.
// Each key has its own timer; a new event on a key resets its timer, so
// the callback fires only after a quiet period.
type Debouncer struct {
	interval time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		timers:   make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
	}
}

// Trigger schedules callback to run after the debounce interval unless
// another event arrives for the same key first. Returns true when a
// pending callback for the key was superseded.
func (d *Debouncer) Trigger(key string, callback func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	collapsed := false
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		collapsed = true
	}

	d.timers[key] = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}

		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()

		callback()
	})

	return collapsed
}

// Pending returns the number of keys with a scheduled callback.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels all pending callbacks. Stop is idempotent.
func (d *Debouncer) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)

		d.mu.Lock()
		defer d.mu.Unlock()

		for key, timer := range d.timers {
			timer.Stop()
			delete(d.timers, key)
		}
	})
}
