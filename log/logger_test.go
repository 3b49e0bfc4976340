package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetLevel(Notice)

	logger := New("level-test")

	SetLevel(Warning)
	logger.Info("hidden message")
	logger.Warning("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Fatalf("expected info message to be filtered out; got %q", out)
	}
	if !strings.Contains(out, "visible message") {
		t.Fatalf("expected warning message to be logged; got %q", out)
	}
	if !strings.Contains(out, "[level-test]") {
		t.Fatalf("expected output to include the module name; got %q", out)
	}
}

func TestModuleLevel(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	SetLevel(Notice)
	defer SetModuleLevel("chatty", Notice)

	SetModuleLevel("chatty", Debug)
	New("chatty").Debug("debug from chatty")
	New("quiet").Debug("debug from quiet")

	out := buf.String()
	if !strings.Contains(out, "debug from chatty") {
		t.Fatalf("expected module level override to enable debug output; got %q", out)
	}
	if strings.Contains(out, "debug from quiet") {
		t.Fatalf("expected other modules to keep the global level; got %q", out)
	}
}
