package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info by default", false, func(l *log.Logger) { l.Info("drew plan") }, true},
		{"debug hidden by default", false, func(l *log.Logger) { l.Debug("balance round") }, false},
		{"debug when verbose", true, func(l *log.Logger) { l.Debug("balance round") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, levelFor(tt.verbose)))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("drew plan", "districts", 14)

	out := buf.String()
	for _, want := range []string{"drew plan", "elapsed=", "districts=14"} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output %q missing %q", out, want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext should fall back to a default logger")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	got := loggerFromContext(withLogger(context.Background(), l))
	if got != l {
		t.Fatal("loggerFromContext should return the attached logger")
	}
}

func TestVerboseFlagReachesPipeline(t *testing.T) {
	dir := setupDatasets(t)

	var buf bytes.Buffer
	root := New(&buf, LogInfo).RootCommand()
	root.SetArgs([]string{"draw", "-v", "--state", "GA", "-n", "2", "-d", "100",
		"--datasets", dir, "--no-cache", "-o", t.TempDir() + "/plan.csv"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("draw: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"drawing districts", "districts drawn", "drew plan"} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose log missing %q:\n%s", want, out)
		}
	}
}
