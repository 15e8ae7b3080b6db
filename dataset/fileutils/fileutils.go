package fileutils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileExists reports whether path can be stat'ed.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Truncate trims s and cuts it to max bytes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// AtomicFile is a write handle whose content only appears under its final name after Commit.
// Until then the bytes live in a temp file in the same directory; Abort (or a failed Commit)
// removes it, so an interrupted stage never leaves a truncated output behind.
type AtomicFile struct {
	f         *os.File
	finalPath string
	tmpName   string
	finished  bool
	done      bool
}

// CreateAtomic opens a temp file next to path. Callers must Commit or Abort it.
func CreateAtomic(path string, mode fs.FileMode) (*AtomicFile, error) {
	if path == "" {
		return nil, errors.New("CreateAtomic: empty path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("CreateAtomic: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp_"+filepath.Base(path)+"_*")
	if err != nil {
		return nil, fmt.Errorf("CreateAtomic: %w", err)
	}
	if mode == 0 {
		mode = 0o644
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("CreateAtomic: chmod: %w", err)
	}
	return &AtomicFile{f: tmp, finalPath: path, tmpName: tmp.Name()}, nil
}

func (a *AtomicFile) Write(p []byte) (int, error) {
	if a.finished {
		return 0, fmt.Errorf("AtomicFile: write after finish: %s", a.finalPath)
	}
	return a.f.Write(p)
}

// Path returns the final destination path.
func (a *AtomicFile) Path() string { return a.finalPath }

// Finish syncs and closes the temp file without renaming it. It lets a caller complete
// several files before committing any of them.
func (a *AtomicFile) Finish() error {
	if a.finished {
		return nil
	}
	a.finished = true
	if err := a.f.Sync(); err != nil {
		_ = a.f.Close()
		return err
	}
	return a.f.Close()
}

// Commit finishes the file and renames it into place.
func (a *AtomicFile) Commit() error {
	if a.done {
		return nil
	}
	if err := a.Finish(); err != nil {
		a.Abort()
		return fmt.Errorf("commit %s: %w", a.finalPath, err)
	}
	if err := os.Rename(a.tmpName, a.finalPath); err != nil {
		a.Abort()
		return fmt.Errorf("commit %s: %w", a.finalPath, err)
	}
	a.done = true
	return nil
}

// Abort discards the temp file. It is a no-op after a successful Commit, so it is safe to defer.
func (a *AtomicFile) Abort() {
	if a.done {
		return
	}
	a.done = true
	if !a.finished {
		a.finished = true
		_ = a.f.Close()
	}
	_ = os.Remove(a.tmpName)
}

// CommitAll finishes every file before renaming any, so either all outputs appear or none do
// (up to a failure in the rename step itself).
func CommitAll(files ...*AtomicFile) error {
	for _, f := range files {
		if err := f.Finish(); err != nil {
			for _, g := range files {
				g.Abort()
			}
			return fmt.Errorf("finish %s: %w", f.finalPath, err)
		}
	}
	for _, f := range files {
		if err := f.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// RemoveIfExists deletes a stale output from a previous run. A missing file is not an error.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
