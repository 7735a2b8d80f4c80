package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"off", LevelNone},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, test := range tests {
		if got := LevelFromString(test.in); got != test.want {
			t.Errorf("LevelFromString(%q) = %s, expected %s", test.in, got, test.want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("Expected debug and info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN: warn 3") || !strings.Contains(out, "ERROR: error 4") {
		t.Errorf("Expected warn and error lines, got %q", out)
	}

	buf.Reset()
	l.SetLevel(LevelNone)
	l.Errorf("silenced")
	if buf.Len() != 0 {
		t.Errorf("Expected no output at LevelNone, got %q", buf.String())
	}
	if l.Level() != LevelNone {
		t.Errorf("Expected LevelNone, got %s", l.Level())
	}
}
