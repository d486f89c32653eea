package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "key=value") {
		t.Errorf("log output = %q", out)
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Info("written to file")

	data := mustRead(t, path)
	if !strings.Contains(data, "written to file") {
		t.Errorf("log file contents = %q", data)
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithLogger(NewLogger(&buf), "run_id", "abc")

	logger.Info("tagged")

	if !strings.Contains(buf.String(), "run_id=abc") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	SetLogLevel(logger, log.ErrorLevel)

	logger.Info("suppressed")
	logger.Error("visible")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("info message should be suppressed at error level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("error message missing")
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("GenerateID returned duplicate values")
	}
	if len(a) != 36 {
		t.Errorf("id length = %d, want 36", len(a))
	}
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]int{"n": 1}

	compact, err := MarshalJSON(payload, false)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(compact) != `{"n":1}` {
		t.Errorf("compact = %s", compact)
	}

	pretty, err := MarshalJSON(payload, true)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if !strings.Contains(string(pretty), "\n") {
		t.Errorf("pretty output not indented: %s", pretty)
	}
}
