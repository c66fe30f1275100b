// Package source acquires the raw text behind a named data source.
//
// Acquisition never fails with an error return. A read problem is reported as
// an Unavailable result so callers branch on it explicitly.
package source

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Result is the outcome of acquiring a source: either its text or the reason
// it could not be read.
type Result struct {
	text   string
	reason error
	ok     bool
}

// Available wraps text read successfully.
func Available(text string) Result {
	return Result{text: text, ok: true}
}

// Unavailable records why a source could not be read.
func Unavailable(reason error) Result {
	if reason == nil {
		reason = fmt.Errorf("source unavailable")
	}
	return Result{reason: reason}
}

func (r Result) OK() bool      { return r.ok }
func (r Result) Text() string  { return r.text }
func (r Result) Reason() error { return r.reason }

// Acquirer reads the text for a source path.
type Acquirer interface {
	Acquire(path string) Result
}

// Func adapts a plain function to Acquirer.
type Func func(path string) Result

func (f Func) Acquire(path string) Result { return f(path) }

// FS acquires sources from a filesystem rooted at a results directory.
type FS struct {
	fs   afero.Fs
	root string
}

// NewFS returns an acquirer that resolves relative paths against root.
func NewFS(fs afero.Fs, root string) *FS {
	return &FS{fs: fs, root: root}
}

// NewOS is NewFS over the operating system filesystem.
func NewOS(root string) *FS {
	return NewFS(afero.NewOsFs(), root)
}

// Resolve returns the filesystem path that Acquire reads for path.
func (s *FS) Resolve(path string) string {
	if filepath.IsAbs(path) || s.root == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(s.root, path)
}

// Acquire reads the whole file at path.
func (s *FS) Acquire(path string) Result {
	full := s.Resolve(path)
	b, err := afero.ReadFile(s.fs, full)
	if err != nil {
		return Unavailable(fmt.Errorf("read %s: %w", full, err))
	}
	return Available(string(b))
}
