package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("load missing file: %v", err)
	}

	for _, line := range []string{"LET x = 1;", "  ", "x + 1", "x + 1", "LET x = 1;"} {
		if err := h.Add(line); err != nil {
			t.Fatalf("Add(%q): %v", line, err)
		}
	}

	want := []string{"x + 1", "LET x = 1;"}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("entries = %q, want %q", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}

	if string(data) != "x + 1\nLET x = 1;\n" {
		t.Errorf("history file = %q", data)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded entries = %q, want %q", got, want)
	}

	if line, err := reloaded.Entry(0); err != nil || line != "x + 1" {
		t.Errorf("Entry(0) = %q, %v", line, err)
	}

	if _, err := reloaded.Entry(2); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry(2) error = %v, want %v", err, ErrOutOfBounds)
	}
}

func TestHistory_Memory(t *testing.T) {
	h := NewHistory("")

	if err := h.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := h.Add("1 + 1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}
}
