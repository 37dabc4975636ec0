// Package cli implements the zendiagram command-line interface.
//
// The commands lay out node-link diagrams described in JSON or TOML
// documents, render the results and host the layout engine interactively
// in the terminal or behind an HTTP service. The CLI is built using cobra
// and logs through charmbracelet/log.
//
// # Commands
//
//   - layout: Compute a layout snapshot from a document
//   - visualize: Render a snapshot to SVG, PNG, JSON or DOT
//   - render: Layout and visualize in one step
//   - view: Browse a diagram in the terminal
//   - serve: Run the HTTP layout service
//   - cache, config: Manage the cache and the config file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level stage timings and
// --quiet (-q) for warnings only. Terminals get styled text logs; pipes and
// files get logfmt. Loggers are passed through context.Context so helpers
// can log without extra parameters.
//
// # Example
//
//	import "github.com/zenui/zendiagram/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

// newLogger returns a logger writing to w at level. Terminals get the
// styled text format with short timestamps; anything else gets logfmt.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	opts := log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
	}
	if !isTerminal(w) {
		opts.Formatter = log.LogfmtFormatter
		opts.TimeFormat = time.RFC3339
	}
	return log.NewWithOptions(w, opts)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

// timer logs how long the stages of a command take.
type timer struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func startTimer(l *log.Logger) *timer {
	now := time.Now()
	return &timer{logger: l, start: now, last: now}
}

// lap logs the stage that just finished at debug level.
func (t *timer) lap(stage string, keyvals ...any) {
	now := time.Now()
	t.logger.Debug(stage, append(keyvals, "took", now.Sub(t.last).Round(time.Millisecond))...)
	t.last = now
}

// done logs msg at info level with the time since the timer started.
func (t *timer) done(msg string, keyvals ...any) {
	t.logger.Info(msg, append(keyvals, "elapsed", time.Since(t.start).Round(time.Millisecond))...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
