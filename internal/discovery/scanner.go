// pattern: Imperative Shell

package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"binclean/internal/logging"
)

// Scanner discovers project descriptors beneath search roots.
type Scanner struct {
	logger *logging.ScopedLogger
}

// NewScanner creates a new project scanner. A nil logger discards output.
func NewScanner(logger *logging.ScopedLogger) *Scanner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Scanner{logger: logger}
}

// FindProjectDirectories walks each root looking for files whose extension
// is in extensions. Directories named in opts.SkipDirNames are pruned,
// recursion stops at opts.MaxDepth and a directory reached twice (through a
// symlink, say) is searched only once. Missing roots and unreadable
// directories are reported in Result.Skipped, never as errors.
//
// The returned projects are deduplicated by directory in traversal order.
func (s *Scanner) FindProjectDirectories(roots []string, extensions []string, opts Options) (Result, error) {
	if len(roots) == 0 {
		return Result{}, fmt.Errorf("%w: no search roots", ErrInvalidArgument)
	}
	exts, err := extensionSet(extensions)
	if err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()

	w := &walker{
		exts:     exts,
		skip:     nameSet(opts.SkipDirNames),
		maxDepth: opts.MaxDepth,
		visited:  make(map[string]struct{}),
		logger:   s.logger,
	}

	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			return Result{}, fmt.Errorf("%w: empty search root", ErrInvalidArgument)
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return Result{}, fmt.Errorf("resolve root %q: %w", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			w.skipped = append(w.skipped, SkippedDir{Path: abs, Reason: SkipMissingRoot, Err: err})
			s.logger.Warn("search root not found", "root", abs, "error", err)
			continue
		}
		if !info.IsDir() {
			w.skipped = append(w.skipped, SkippedDir{Path: abs, Reason: SkipMissingRoot})
			s.logger.Warn("search root is not a directory", "root", abs)
			continue
		}
		w.walk(abs, 0)
	}

	result := Result{
		Projects: dedupeByDir(w.found),
		Skipped:  w.skipped,
	}
	s.logger.Debug("discovery finished",
		"descriptors", len(w.found),
		"projects", len(result.Projects),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// walker holds the state of one FindProjectDirectories call.
type walker struct {
	exts     map[string]bool
	skip     map[string]bool
	maxDepth int
	visited  map[string]struct{}
	found    []ProjectDescriptor
	skipped  []SkippedDir
	logger   *logging.ScopedLogger
}

func (w *walker) walk(dir string, depth int) {
	key := canonicalPath(dir)
	if _, seen := w.visited[key]; seen {
		w.skipped = append(w.skipped, SkippedDir{Path: dir, Reason: SkipCycle})
		w.logger.Debug("directory already visited", "dir", dir, "canonical", key)
		return
	}
	w.visited[key] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.skipped = append(w.skipped, SkippedDir{Path: dir, Reason: SkipUnreadable, Err: err})
		w.logger.Debug("directory unreadable", "dir", dir, "error", err)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		isDir, ok := entryIsDir(path, entry)
		if !ok {
			continue // dangling symlink
		}
		if isDir {
			if w.skip[strings.ToLower(entry.Name())] {
				continue
			}
			if depth >= w.maxDepth {
				w.skipped = append(w.skipped, SkippedDir{Path: path, Reason: SkipDepth})
				continue
			}
			w.walk(path, depth+1)
			continue
		}

		if w.exts[strings.ToLower(filepath.Ext(entry.Name()))] {
			w.found = append(w.found, ProjectDescriptor{Path: path, Dir: dir})
		}
	}
}

// entryIsDir follows symlinks so linked directories are searched. ok is
// false when the link target cannot be resolved.
func entryIsDir(path string, entry fs.DirEntry) (isDir bool, ok bool) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir(), true
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return info.IsDir(), true
}

// canonicalPath resolves symlinks to get a stable key for the visited set,
// falling back to the cleaned path if resolution fails.
func canonicalPath(dir string) string {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return filepath.Clean(dir)
	}
	return resolved
}
