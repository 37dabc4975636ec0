package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerUsesLogfmtOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("layout computed", "nodes", 3)

	out := buf.String()
	for _, want := range []string{`msg="layout computed"`, "nodes=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("x") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("x") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("x") }, true},
		{"info at warn", log.WarnLevel, func(l *log.Logger) { l.Info("x") }, false},
		{"warn at warn", log.WarnLevel, func(l *log.Logger) { l.Warn("x") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimer(t *testing.T) {
	var buf bytes.Buffer
	tm := startTimer(newLogger(&buf, log.DebugLevel))
	tm.lap("loaded document", "path", "diagram.json")
	tm.done("wrote snapshot")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `msg="loaded document"`) || !strings.Contains(lines[0], "took=") {
		t.Errorf("lap line = %q", lines[0])
	}
	if !strings.Contains(lines[1], `msg="wrote snapshot"`) || !strings.Contains(lines[1], "elapsed=") {
		t.Errorf("done line = %q", lines[1])
	}
}

func TestTimerLapHiddenAtInfo(t *testing.T) {
	var buf bytes.Buffer
	startTimer(newLogger(&buf, log.InfoLevel)).lap("loaded document")
	if buf.Len() != 0 {
		t.Errorf("lap logged at info level: %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield log.Default()")
	}

	l := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("loggerFromContext did not return the attached logger")
	}
}
