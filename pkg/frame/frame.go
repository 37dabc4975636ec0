// Package frame schedules work onto animation frames.
//
// Hosts supply a [Scheduler] that runs callbacks before the next repaint.
// Headless hosts and tests use [Manual], which queues callbacks until
// [Manual.Flush] is called. [Throttle] guarantees at most one pending
// callback per owner, which is how the engine limits drag commits and
// group measurements to one per frame.
//
// Nothing in this package is safe for concurrent use. Callbacks run on the
// goroutine that drives the scheduler.
package frame

// ID identifies a requested frame callback. The zero ID is never issued.
type ID uint64

// Scheduler runs callbacks on upcoming animation frames.
type Scheduler interface {
	// RequestFrame schedules fn for the next frame and returns its id.
	RequestFrame(fn func()) ID
	// CancelFrame drops a pending callback. Unknown ids are ignored.
	CancelFrame(id ID)
}

// Manual is a Scheduler driven explicitly by its owner.
type Manual struct {
	next    ID
	pending []request
}

type request struct {
	id ID
	fn func()
}

// NewManual returns an empty manual scheduler.
func NewManual() *Manual { return &Manual{} }

// RequestFrame queues fn until the next Flush.
func (m *Manual) RequestFrame(fn func()) ID {
	m.next++
	m.pending = append(m.pending, request{id: m.next, fn: fn})
	return m.next
}

// CancelFrame removes a queued callback.
func (m *Manual) CancelFrame(id ID) {
	for i, r := range m.pending {
		if r.id == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// Flush runs one frame: every callback queued before the call, in request
// order. Callbacks requested while flushing wait for the next Flush. It
// returns the number of callbacks run.
func (m *Manual) Flush() int {
	batch := m.pending
	m.pending = nil
	for _, r := range batch {
		r.fn()
	}
	return len(batch)
}

// Settle flushes frames until none are pending or limit frames have run.
// It returns the number of frames flushed.
func (m *Manual) Settle(limit int) int {
	frames := 0
	for frames < limit && len(m.pending) > 0 {
		m.Flush()
		frames++
	}
	return frames
}

// Pending returns the number of queued callbacks.
func (m *Manual) Pending() int { return len(m.pending) }

// Immediate is a Scheduler that runs callbacks synchronously. It suits
// batch hosts that have no repaint cycle.
type Immediate struct{ next ID }

// RequestFrame runs fn before returning.
func (s *Immediate) RequestFrame(fn func()) ID {
	s.next++
	fn()
	return s.next
}

// CancelFrame does nothing; callbacks have already run.
func (s *Immediate) CancelFrame(ID) {}

var (
	_ Scheduler = (*Manual)(nil)
	_ Scheduler = (*Immediate)(nil)
)
