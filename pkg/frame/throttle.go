package frame

// Throttle coalesces requests into at most one pending frame callback.
//
// While a callback is pending further requests are dropped, so the callback
// should read the latest state when it runs rather than capture it.
type Throttle struct {
	sched   Scheduler
	pending ID
	closed  bool
}

// NewThrottle returns a throttle scheduling onto s.
func NewThrottle(s Scheduler) *Throttle { return &Throttle{sched: s} }

// Request schedules fn unless a callback is already pending or the throttle
// is closed. It reports whether fn was scheduled.
func (t *Throttle) Request(fn func()) bool {
	if t.closed || t.pending != 0 {
		return false
	}
	// Immediate schedulers run fn inside RequestFrame, so mark the request
	// pending before scheduling and clear it from within the callback.
	t.pending = ^ID(0)
	id := t.sched.RequestFrame(func() {
		t.pending = 0
		if !t.closed {
			fn()
		}
	})
	if t.pending != 0 {
		t.pending = id
	}
	return true
}

// Pending reports whether a callback is waiting for its frame.
func (t *Throttle) Pending() bool { return t.pending != 0 }

// Cancel drops the pending callback, if any.
func (t *Throttle) Cancel() {
	if t.pending != 0 {
		t.sched.CancelFrame(t.pending)
		t.pending = 0
	}
}

// Close cancels the pending callback and rejects all future requests.
func (t *Throttle) Close() {
	t.Cancel()
	t.closed = true
}
