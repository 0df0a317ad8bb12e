package logger

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
)

func TestConsoleLoggerTimestampPrefix(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.Infof("running %s", "vlans/snvs")

	line := buf.String()
	matched, err := regexp.MatchString(`^\[\d{2}:\d{2}:\d{2}\] running vlans/snvs\n$`, line)
	if err != nil {
		t.Fatalf("regexp error: %v", err)
	}
	if !matched {
		t.Errorf("line = %q, want [HH:MM:SS] prefix", line)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		wantDebug bool
		wantInfo  bool
		wantError bool
	}{
		{name: "info hides debug", logLevel: "info", wantDebug: false, wantInfo: true, wantError: true},
		{name: "debug shows all", logLevel: "debug", wantDebug: true, wantInfo: true, wantError: true},
		{name: "error hides info", logLevel: "error", wantDebug: false, wantInfo: false, wantError: true},
		{name: "invalid defaults to info", logLevel: "loud", wantDebug: false, wantInfo: true, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cl := NewConsoleLogger(&buf, tt.logLevel)

			cl.Debugf("debug-msg")
			cl.Infof("info-msg")
			cl.Errorf("error-msg")

			out := buf.String()
			if got := strings.Contains(out, "debug-msg"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info-msg"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "error-msg"); got != tt.wantError {
				t.Errorf("error logged = %v, want %v", got, tt.wantError)
			}
		})
	}
}

func TestConsoleLoggerNilWriter(t *testing.T) {
	cl := NewConsoleLogger(nil, "info")
	// Must not panic.
	cl.Infof("discarded")
	cl.Errorf("discarded")
}

func TestConsoleLoggerNoColorForPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.Errorf("bad thing")

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("output %q contains ANSI escapes for non-terminal writer", buf.String())
	}
}
