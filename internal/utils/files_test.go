package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/statdeck/internal/utils"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "page.html")
	if err := os.WriteFile(p, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := utils.SafeWriteFile(p, []byte("new")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "new" {
		t.Fatalf("got %q", b)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file cleanup, got %d entries", len(entries))
	}
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope", "out.md")
	if err := utils.SafeWriteFile(p, []byte("x")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestEnsureDir(t *testing.T) {
	d := filepath.Join(t.TempDir(), "a", "b")
	if err := utils.EnsureDir(d); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if info, err := os.Stat(d); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", d)
	}
	if err := utils.EnsureDir(""); err != nil {
		t.Fatalf("empty dir: %v", err)
	}
}
