package frame

import "testing"

func TestManualFlushOrder(t *testing.T) {
	m := NewManual()
	var got []int
	m.RequestFrame(func() { got = append(got, 1) })
	m.RequestFrame(func() {
		got = append(got, 2)
		m.RequestFrame(func() { got = append(got, 3) })
	})

	if n := m.Flush(); n != 2 {
		t.Fatalf("Flush ran %d callbacks, want 2", n)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("after first frame got %v", got)
	}
	if m.Pending() != 1 {
		t.Fatalf("callback requested during flush should wait, pending = %d", m.Pending())
	}
	m.Flush()
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("after second frame got %v", got)
	}
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	ran := false
	id := m.RequestFrame(func() { ran = true })
	m.CancelFrame(id)
	m.CancelFrame(id + 100) // unknown ids are ignored
	m.Flush()
	if ran {
		t.Error("cancelled callback ran")
	}
}

func TestManualSettle(t *testing.T) {
	m := NewManual()
	count := 0
	var again func()
	again = func() {
		count++
		if count < 3 {
			m.RequestFrame(again)
		}
	}
	m.RequestFrame(again)
	if frames := m.Settle(10); frames != 3 {
		t.Errorf("Settle flushed %d frames, want 3", frames)
	}
	if m.Settle(10) != 0 {
		t.Error("Settle on an idle scheduler should flush nothing")
	}
}

func TestThrottleCoalesces(t *testing.T) {
	m := NewManual()
	th := NewThrottle(m)
	calls := 0

	if !th.Request(func() { calls++ }) {
		t.Fatal("first request should be scheduled")
	}
	for i := 0; i < 5; i++ {
		if th.Request(func() { calls += 100 }) {
			t.Fatal("requests while pending should be dropped")
		}
	}
	if !th.Pending() {
		t.Fatal("throttle should report pending")
	}

	m.Flush()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if th.Pending() {
		t.Error("throttle should be idle after the frame")
	}
	if !th.Request(func() { calls++ }) {
		t.Error("request after the frame should be scheduled")
	}
}

func TestThrottleClose(t *testing.T) {
	m := NewManual()
	th := NewThrottle(m)
	ran := false
	th.Request(func() { ran = true })
	th.Close()
	m.Flush()

	if ran {
		t.Error("closed throttle ran its pending callback")
	}
	if th.Request(func() { ran = true }) {
		t.Error("closed throttle accepted a request")
	}
}

func TestThrottleImmediate(t *testing.T) {
	th := NewThrottle(&Immediate{})
	calls := 0
	for i := 0; i < 3; i++ {
		if !th.Request(func() { calls++ }) {
			t.Fatalf("request %d was dropped", i)
		}
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if th.Pending() {
		t.Error("immediate throttle should never stay pending")
	}
}
