package notify

import (
	"bytes"
	"strings"
	"testing"
)

func TestMultiFansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b}
	m.Info("one")
	m.Error("two")

	for _, r := range []*Recorder{a, b} {
		entries := r.Entries()
		if len(entries) != 2 || entries[0].Level != "info" || entries[1].Message != "two" {
			t.Fatalf("unexpected entries: %+v", entries)
		}
	}
	if last, ok := a.Last("error"); !ok || last.Message != "two" {
		t.Fatalf("last error mismatch: %+v", last)
	}
	if _, ok := a.Last("success"); ok {
		t.Fatalf("no success expected")
	}
}

func TestTerminalNotifierWritesLines(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminalNotifier(&buf)
	n.Success("Wallet connected successfully!")
	n.Error("No wallet found")

	out := buf.String()
	if !strings.Contains(out, "Wallet connected successfully!") || !strings.Contains(out, "No wallet found") {
		t.Fatalf("unexpected output: %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected two lines, got %q", out)
	}
}
