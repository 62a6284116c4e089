// Package atomicfile provides output files that only appear at their final
// path once fully and successfully written, per spec §5: "an interrupted
// diff or apply leaves no partial output file (output is written to a
// temporary path and atomically renamed on success, or not renamed on
// failure)."
//
// It is grounded on mutagen's pkg/filesystem/atomic.go (WriteFileAtomic):
// temporary file created in the destination directory, renamed into place
// on success, removed on any failure. That helper writes a single in-memory
// byte slice; Patchy generalizes it to an io.WriteCloser so that diff and
// patch can stream arbitrarily large files instead of buffering them.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kayru/patchy/internal/randsuffix"
)

// temporaryNamePrefix mirrors mutagen's atomicWriteTemporaryNamePrefix
// naming convention.
const temporaryNamePrefix = ".patchy-atomic-write-"

// File is an io.WriteCloser that writes to a temporary file beside its
// final destination. Calling Close renames the temporary file into place;
// calling Abort (or Close failing) removes it instead.
type File struct {
	path string
	temp *os.File
	done bool
}

// Create opens a new atomic output file for path. permissions controls the
// final file's mode.
func Create(path string, permissions os.FileMode) (*File, error) {
	suffix, err := randsuffix.New(8)
	if err != nil {
		return nil, fmt.Errorf("unable to generate temporary name suffix: %w", err)
	}

	dir := filepath.Dir(path)
	temp, err := os.OpenFile(
		filepath.Join(dir, temporaryNamePrefix+suffix),
		os.O_RDWR|os.O_CREATE|os.O_EXCL,
		permissions,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary file: %w", err)
	}

	return &File{path: path, temp: temp}, nil
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) {
	return f.temp.Write(p)
}

// Close closes the temporary file and renames it into place at the File's
// final path. After Close returns (successfully or not), the temporary file
// no longer exists at its temporary name.
func (f *File) Close() error {
	if f.done {
		return nil
	}
	f.done = true

	if err := f.temp.Close(); err != nil {
		os.Remove(f.temp.Name())
		return fmt.Errorf("unable to close temporary file: %w", err)
	}
	if err := os.Rename(f.temp.Name(), f.path); err != nil {
		os.Remove(f.temp.Name())
		return fmt.Errorf("unable to rename temporary file into place: %w", err)
	}
	return nil
}

// Abort closes and removes the temporary file without renaming it into
// place. It's the caller's responsibility to call Abort on any error path
// that occurs after Create but before a successful Close.
func (f *File) Abort() {
	if f.done {
		return
	}
	f.done = true
	f.temp.Close()
	os.Remove(f.temp.Name())
}
