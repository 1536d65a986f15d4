package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "hello world",
			limit:  5,
			expect: "hello...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestBuildWritesToOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vkinder.log")

	l, err := Build(Options{JSON: true, Debug: true, Output: path})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	l.Debug("candidate", zap.Int64("candidate_id", 7))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"step":"candidate"`) || !strings.Contains(line, `"candidate_id":7`) {
		t.Fatalf("unexpected log line: %s", line)
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := config(Options{})
	if cfg.Encoding != "console" {
		t.Fatalf("expected console encoding, got %q", cfg.Encoding)
	}
	if got := cfg.OutputPaths; len(got) != 1 || got[0] != "stdout" {
		t.Fatalf("expected stdout output, got %v", got)
	}
	if cfg.Level.Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug must be disabled by default")
	}
}
