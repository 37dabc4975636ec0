package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Computing layout...")
	s.start(context.Background())
	time.Sleep(200 * time.Millisecond)
	s.stop()

	if !strings.Contains(buf.String(), "Computing layout...") {
		t.Errorf("spinner output %q does not contain the message", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\r") {
		t.Error("spinner did not clear its line on stop")
	}
}

func TestSpinnerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(&bytes.Buffer{}, "Rendering diagram...")
	s.start(ctx)
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after context cancellation")
	}
	s.stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(&bytes.Buffer{}, "Rendering snapshot...")
	s.start(context.Background())
	s.stop()
	s.stop()
}
