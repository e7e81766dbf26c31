package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLogger(&buf)

	l.Log(LevelInfo, "msg", "hello", "attempt", 2)
	line := buf.String()
	for _, want := range []string{"INFO", "msg=hello", "attempt=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q missing %q", line, want)
		}
	}
}

func TestWithPrefixes(t *testing.T) {
	var buf bytes.Buffer
	l, err := With(NewStdLogger(&buf), "component", "readbuf")
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	l.Log(LevelWarn, "msg", "slow read")
	if !strings.Contains(buf.String(), "component=readbuf") {
		t.Fatalf("prefix missing from %q", buf.String())
	}

	if _, err := With(l, "odd"); err != ErrKvsNotInPaired {
		t.Fatalf("unpaired kvs error = %v", err)
	}
}

func TestGlobalFilter(t *testing.T) {
	var buf bytes.Buffer
	old := GetLogger()
	SetLogger(NewStdLogger(&buf))
	defer SetLogger(old)

	FilterLevel(LevelDebug)
	Debugf("should be dropped")
	Infof("should pass")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("filtered level was logged: %q", out)
	}
	if !strings.Contains(out, "pass") {
		t.Fatalf("unfiltered level was not logged: %q", out)
	}
}
