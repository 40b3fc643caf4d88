// pattern: Imperative Shell

package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

// Outcome is the terminal state of one cleanup target.
type Outcome int

const (
	OutcomeSkipped         Outcome = iota // Target did not exist
	OutcomeDeleted                        // Removed by the atomic attempt
	OutcomeDeletedFallback                // Removed by the manual fallback
	OutcomeFailed                         // Still present after both attempts
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeDeletedFallback:
		return "deleted (fallback)"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// IsDeleted reports whether the target is gone because we removed it.
func (o Outcome) IsDeleted() bool {
	return o == OutcomeDeleted || o == OutcomeDeletedFallback
}

// RemoveResult is the tagged outcome of RemoveTree.
type RemoveResult struct {
	Outcome  Outcome
	Primary  error // Error from the atomic attempt, if it failed
	Fallback error // Error from the manual attempt, if it ran and failed
	Files    int   // Files removed
	Dirs     int   // Directories removed, including the target itself
}

// Err combines the primary and fallback errors. It is nil unless the
// outcome is OutcomeFailed.
func (r RemoveResult) Err() error {
	if r.Outcome != OutcomeFailed {
		return nil
	}
	return multierr.Combine(r.Primary, r.Fallback)
}

// Remover deletes directory trees in two phases. The zero value is not
// usable; call NewRemover.
type Remover struct {
	removeAll func(string) error
	remove    func(string) error
}

// NewRemover returns a Remover backed by the os package.
func NewRemover() *Remover {
	return &Remover{removeAll: os.RemoveAll, remove: os.Remove}
}

// RemoveTree deletes dir and everything beneath it. A missing dir is a
// no-op (OutcomeSkipped). The atomic os.RemoveAll is tried first; if it
// fails the tree is removed by hand depth-first, ignoring files that
// cannot be unlinked, and the directory itself is removed last. Only
// failure of that final removal is reported as OutcomeFailed.
func (r *Remover) RemoveTree(dir string) RemoveResult {
	info, err := os.Lstat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return RemoveResult{Outcome: OutcomeSkipped}
	}
	if err != nil {
		return RemoveResult{Outcome: OutcomeFailed, Primary: err}
	}
	if !info.IsDir() {
		return RemoveResult{
			Outcome: OutcomeFailed,
			Primary: fmt.Errorf("%s: not a directory", dir),
		}
	}

	files, dirs := countTree(dir)
	primary := r.removeAll(dir)
	if primary == nil {
		return RemoveResult{Outcome: OutcomeDeleted, Files: files, Dirs: dirs}
	}

	files, dirs, fallback := r.removeManual(dir)
	if fallback == nil {
		return RemoveResult{
			Outcome: OutcomeDeletedFallback,
			Primary: primary,
			Files:   files,
			Dirs:    dirs,
		}
	}
	return RemoveResult{
		Outcome:  OutcomeFailed,
		Primary:  primary,
		Fallback: fallback,
		Files:    files,
		Dirs:     dirs,
	}
}

// removeManual is the fallback phase. Child failures are tolerated; the
// final removal of dir decides the result.
func (r *Remover) removeManual(dir string) (files, dirs int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("fallback: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			f, d, _ := r.removeManual(path)
			files += f
			dirs += d
			continue
		}
		if r.remove(path) == nil {
			files++
		}
	}

	if err := r.remove(dir); err != nil {
		return files, dirs, fmt.Errorf("fallback: %w", err)
	}
	return files, dirs + 1, nil
}

// countTree counts the files and directories under dir, dir included.
// Unreadable parts are not counted.
func countTree(dir string) (files, dirs int) {
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			dirs++
		} else {
			files++
		}
		return nil
	})
	return files, dirs
}

// CheckTargetPath rejects a nested target name whose leading segments
// resolve through a symlink under projectDir. A missing segment is not an
// error; the target is simply absent.
func CheckTargetPath(projectDir, name string) error {
	rel := strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	segments := strings.Split(path.Clean(rel), "/")
	current := projectDir
	for _, seg := range segments[:len(segments)-1] {
		current = filepath.Join(current, seg)
		info, err := os.Lstat(current)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("%w: %s is a symlink", ErrEscapesProject, current)
		}
	}
	return nil
}
