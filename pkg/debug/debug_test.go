package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogDisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetEnabled(false)
	defer SetEnabled(false)

	Log("hidden %d", 1)
	LogIf(true, "hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output while disabled, got %q", buf.String())
	}
}

func TestLogEnabledWritesPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetEnabled(true)
	defer SetEnabled(false)

	Log("row %s measured", "r1")
	LogIf(false, "skipped")
	LogEnterExit("layout")()

	out := buf.String()
	if !strings.Contains(out, "[RV_DEBUG]") || !strings.Contains(out, "row r1 measured") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Contains(out, "skipped") {
		t.Errorf("LogIf(false) should not write, got %q", out)
	}
	if !strings.Contains(out, "-> layout") || !strings.Contains(out, "<- layout") {
		t.Errorf("expected enter/exit lines, got %q", out)
	}
}
