package buildlog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"logship/internal/buildlog"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.log")
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestReadEntireLog(t *testing.T) {
	path := writeLog(t, "line 1", "line 2", "line 3")

	lines, err := buildlog.Read(path, -1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(lines) != 3 || lines[0] != "line 1" || lines[2] != "line 3" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestReadLastLines(t *testing.T) {
	path := writeLog(t, "a", "b", "c", "d", "e")

	lines, err := buildlog.Read(path, 2)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(lines) != 2 || lines[0] != "d" || lines[1] != "e" {
		t.Fatalf("unexpected tail: %#v", lines)
	}
}

func TestReadLimitLargerThanLog(t *testing.T) {
	path := writeLog(t, "only")

	lines, err := buildlog.Read(path, 10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(lines) != 1 || lines[0] != "only" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestReadZeroLines(t *testing.T) {
	// Zero is a valid request: no lines, no file access.
	lines, err := buildlog.Read(filepath.Join(t.TempDir(), "missing.log"), 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %#v", lines)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := buildlog.Read(filepath.Join(t.TempDir(), "missing.log"), -1)
	if err == nil {
		t.Fatal("expected error for missing log file")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		build buildlog.Build
		want  string
	}{
		{"job and id", buildlog.Build{ID: "17", Job: "nightly"}, "nightly #17"},
		{"job only", buildlog.Build{Job: "nightly"}, "nightly"},
		{"id only", buildlog.Build{ID: "17"}, "#17"},
		{"empty", buildlog.Build{}, "(unnamed build)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.build.DisplayName(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
