package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestWizHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&wizHandler{w: &buf, opID: "Diff/abc12345"})

	logger.Info("diff computed", "old", "1.0", "new", "1.1")

	line := buf.String()
	fields := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	if len(fields) != 6 {
		t.Fatalf("field count = %d, want 6: %q", len(fields), line)
	}
	if fields[1] != "INFO" {
		t.Errorf("level = %q, want INFO", fields[1])
	}
	if fields[2] != "Diff/abc12345" {
		t.Errorf("opID = %q, want Diff/abc12345", fields[2])
	}
	if fields[3] != "diff computed" {
		t.Errorf("message = %q, want %q", fields[3], "diff computed")
	}
	if fields[4] != "old=1.0" || fields[5] != "new=1.1" {
		t.Errorf("attrs = %v, want [old=1.0 new=1.1]", fields[4:])
	}
}

func TestWizHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := &wizHandler{w: &buf, opID: "op"}
	logger := slog.New(handler).With("revision", "1.0")

	logger.Info("revision ingested")

	if !strings.Contains(buf.String(), "revision=1.0") {
		t.Errorf("output missing pre-set attr: %q", buf.String())
	}
}
