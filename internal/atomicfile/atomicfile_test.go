package atomicfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateWriteCloseProducesFinalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.bin")

	f, err := Create(path, 0o644)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.Write([]byte("hello, world")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello, world" {
		t.Fatalf("content = %q, want %q", data, "hello, world")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file in %s after Close, found %d", dir, len(entries))
	}
}

func TestAbortLeavesNoFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.bin")

	f, err := Create(path, 0o644)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.Write([]byte("partial")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Abort()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected final path to not exist after Abort, stat err = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files left behind after Abort, found %d", len(entries))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.bin")

	f, err := Create(path, 0o644)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got: %v", err)
	}
}
