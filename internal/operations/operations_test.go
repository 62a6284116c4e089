package operations

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kayru/patchy/internal/container"
	"github.com/kayru/patchy/internal/logging"
	"github.com/kayru/patchy/internal/perr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDiffThenPatchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	basePath := writeFile(t, dir, "base", "AAAAAAAAAAAAAAAA")
	otherPath := writeFile(t, dir, "other", "AAAAAAAAAAAAAAAAXYZ")
	patchPath := filepath.Join(dir, "patch")
	outputPath := filepath.Join(dir, "output")

	logger := logging.RootLogger.Sublogger("test")

	if err := Diff(logger, basePath, otherPath, patchPath, 6, container.DefaultLevel); err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if _, err := os.Stat(patchPath); err != nil {
		t.Fatalf("expected a patch file to be written: %v", err)
	}

	if err := Patch(logger, basePath, patchPath, outputPath); err != nil {
		t.Fatalf("Patch: %v", err)
	}

	got, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want, err := os.ReadFile(otherPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("reconstructed output = %q, want %q", got, want)
	}
}

func TestDiffWithoutPatchPathStillVerifies(t *testing.T) {
	dir := t.TempDir()
	basePath := writeFile(t, dir, "base", "AAAAAAAAAAAAAAAA")
	otherPath := writeFile(t, dir, "other", "AAAAAAAAAAAAAAAAXYZ")

	logger := logging.RootLogger.Sublogger("test")
	if err := Diff(logger, basePath, otherPath, "", 4, container.DefaultLevel); err != nil {
		t.Fatalf("Diff: %v", err)
	}
}

// Scenario 6: applying a patch against a base that doesn't match the
// base_hash recorded at diff time fails with BaseMismatch, before any
// output is written.
func TestPatchRejectsMismatchedBase(t *testing.T) {
	dir := t.TempDir()
	basePath := writeFile(t, dir, "base", "AAAAAAAAAAAAAAAA")
	otherPath := writeFile(t, dir, "other", "AAAAAAAAAAAAAAAAXYZ")
	patchPath := filepath.Join(dir, "patch")

	logger := logging.RootLogger.Sublogger("test")
	if err := Diff(logger, basePath, otherPath, patchPath, 4, container.DefaultLevel); err != nil {
		t.Fatalf("Diff: %v", err)
	}

	modifiedBasePath := writeFile(t, dir, "modified-base", "AAAAAAAAAAAAAAAB")
	outputPath := filepath.Join(dir, "output")

	err := Patch(logger, modifiedBasePath, patchPath, outputPath)
	if err == nil {
		t.Fatal("expected an error when the base file doesn't match the patch's recorded hash")
	}
	if !errors.Is(err, perr.BaseMismatch) {
		t.Fatalf("expected a BaseMismatch error, got: %v", err)
	}

	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output file to be written on BaseMismatch, stat err = %v", statErr)
	}
}

func TestRoundTripWithUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	basePath := writeFile(t, dir, "base", "AAAAAAAAAAAAAAAA")
	otherPath := writeFile(t, dir, "other", "ZZZZZZZZZZZZZZZZ")
	patchPath := filepath.Join(dir, "patch")
	outputPath := filepath.Join(dir, "output")

	logger := logging.RootLogger.Sublogger("test")
	if err := Diff(logger, basePath, otherPath, patchPath, 4, container.DefaultLevel); err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if err := Patch(logger, basePath, patchPath, outputPath); err != nil {
		t.Fatalf("Patch: %v", err)
	}

	got, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "ZZZZZZZZZZZZZZZZ" {
		t.Fatalf("reconstructed output = %q, want %q", got, "ZZZZZZZZZZZZZZZZ")
	}
}
