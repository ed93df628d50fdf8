package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]any{"provider", "anthropic", "API_KEY", "sk-123", "dangling"})
	want := []any{"provider", "anthropic", "API_KEY", "[REDACTED]", "dangling"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kv[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Options{Mode: "production", Level: "info", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("catalog imported", "key", "addition", "token", "abc")
	log.Debug("hidden")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "catalog imported") {
		t.Errorf("missing info line: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %s", out)
	}
	if strings.Contains(out, "abc") {
		t.Errorf("token not redacted: %s", out)
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
