package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line while a layout or render runs.
type spinner struct {
	out  io.Writer
	msg  string
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// startSpinner draws msg on stderr until stop is called or ctx is done.
// Nothing is drawn when stderr is not a terminal.
func startSpinner(ctx context.Context, msg string) *spinner {
	var out io.Writer = io.Discard
	if isatty.IsTerminal(os.Stderr.Fd()) {
		out = os.Stderr
	}
	s := newSpinner(out, msg)
	s.start(ctx)
	return s
}

func newSpinner(out io.Writer, msg string) *spinner {
	return &spinner{out: out, msg: msg, quit: make(chan struct{}), done: make(chan struct{})}
}

func (s *spinner) start(ctx context.Context) {
	go func() {
		defer close(s.done)
		defer s.clear()
		t := time.NewTicker(spinnerInterval)
		defer t.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.msg))
			select {
			case <-ctx.Done():
				return
			case <-s.quit:
				return
			case <-t.C:
			}
		}
	}()
}

// stop ends the animation and erases the line. It is safe to call more
// than once.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}

// fail stops the spinner and prints msg as an error.
func (s *spinner) fail(msg string) {
	s.stop()
	printError("%s", msg)
}

func (s *spinner) clear() {
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.msg)+4))
}
