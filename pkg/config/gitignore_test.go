package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		line    string
		pattern string
		matches bool
	}{
		{"people.db", "people.db", true},
		{"/people.db", "people.db", true},
		{".orgchart", ".orgchart/", true},
		{".orgchart/*", ".orgchart", true},
		{".orgchart/**", ".orgchart", true},
		{"/.orgchart/", ".orgchart", true},

		{"people.db2", "people.db", false},
		{"*.db", "people.db", false},
		{"orgchart", ".orgchart", false},
		{"#people.db", "people.db", false},
	}
	for _, tt := range tests {
		t.Run(tt.line+"_"+tt.pattern, func(t *testing.T) {
			if got := matchesPattern(tt.line, tt.pattern); got != tt.matches {
				t.Errorf("matchesPattern(%q, %q) = %v, want %v", tt.line, tt.pattern, got, tt.matches)
			}
		})
	}
}

func TestEnsureIgnored_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureIgnored(dir, "people.db"); err != nil {
		t.Fatalf("EnsureIgnored: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	want := "# orgchart local data\npeople.db\n"
	if string(got) != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestEnsureIgnored_AppendsAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(path, []byte("node_modules/"), 0o644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := EnsureIgnored(dir, "people.db"); err != nil {
			t.Fatalf("EnsureIgnored #%d: %v", i+1, err)
		}
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "node_modules/\n\n# orgchart local data\npeople.db\n"
	if string(got) != want {
		t.Errorf("content = %q, want %q", got, want)
	}
	if n := strings.Count(string(got), "people.db"); n != 1 {
		t.Errorf("pattern written %d times", n)
	}
}

func TestEnsureIgnored_RespectsExistingEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	orig := "# data\n/people.db\n"
	if err := os.WriteFile(path, []byte(orig), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureIgnored(dir, "people.db"); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != orig {
		t.Errorf("file modified: %q", got)
	}
}
