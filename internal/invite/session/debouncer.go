package session

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is how long text entry must be idle before the
// parsed batch is dispatched.
const DefaultDebounceDelay = 300 * time.Millisecond

// Debouncer runs only the last function handed to Trigger, once the delay
// has passed without another Trigger. It is used for free-text entry so a
// burst of keystrokes yields a single AddEmails dispatch.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Flush runs fn immediately and drops any pending call.
func (d *Debouncer) Flush(fn func()) {
	d.Stop()
	fn()
}

// Stop cancels a pending call. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}
