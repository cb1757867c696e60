package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)

	SetLevel(Notice)
	logger := New("test")
	logger.Info("hidden message")
	logger.Notice("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Fatalf("expected info message to be filtered at notice level; got %q", out)
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "[test]") {
		t.Fatalf("expected notice message tagged with module name; got %q", out)
	}

	buf.Reset()
	SetModuleLevel("test", Debug)
	defer SetLevel(Notice)
	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Fatalf("expected debug message after raising module level; got %q", buf.String())
	}
}
