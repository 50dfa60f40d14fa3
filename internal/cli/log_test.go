package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"closure stats at info", LogInfo, func(l *log.Logger) { l.Info("closed pool", "splits", 7) }, true},
		{"round detail hidden at info", LogInfo, func(l *log.Logger) { l.Debug("round", "run", 0) }, false},
		{"round detail with --verbose", LogDebug, func(l *log.Logger) { l.Debug("round", "run", 0) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).Info("closed pool")
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("missing HH:MM:SS.ms timestamp: %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, LogInfo)).done("Rendered SVG")

	if !regexp.MustCompile(`Rendered SVG \([0-9.]+[mµn]?s\)`).MatchString(buf.String()) {
		t.Errorf("unexpected progress line: %q", buf.String())
	}

	buf.Reset()
	newProgress(newLogger(&buf, log.WarnLevel)).done("Rendered SVG")
	if buf.Len() != 0 {
		t.Errorf("progress should log at info level, got %q at warn", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, LogInfo)

	tests := []struct {
		name string
		ctx  context.Context
		want *log.Logger
	}{
		{"attached", withLogger(context.Background(), custom), custom},
		{"missing falls back to default", context.Background(), log.Default()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("loggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}

	loggerFromContext(withLogger(context.Background(), custom)).Info("saved run", "id", "r1")
	if !strings.Contains(buf.String(), "saved run") {
		t.Errorf("attached logger did not write: %q", buf.String())
	}
}
