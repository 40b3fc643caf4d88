// pattern: Functional Core

package discovery

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DefaultMaxDepth is how many directory levels below a root are searched.
	DefaultMaxDepth = 20
	minMaxDepth     = 1
	maxMaxDepth     = 100

	// maxUpwardSteps caps the enclosing-project search even without a cycle.
	maxUpwardSteps = 100
)

// ErrInvalidArgument marks caller mistakes such as an empty root list.
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultExtensions are the project and solution descriptor extensions.
var DefaultExtensions = []string{".csproj", ".fsproj", ".vbproj", ".sln"}

// DefaultSkipDirNames are never descended into: dependency caches,
// version-control metadata, IDE state and the build outputs themselves.
var DefaultSkipDirNames = []string{
	"node_modules",
	".git",
	".svn",
	".hg",
	".vs",
	".idea",
	"packages",
	"bin",
	"obj",
}

// ProjectDescriptor is a discovered project or solution file.
type ProjectDescriptor struct {
	Path string // Absolute path to the descriptor file
	Dir  string // Directory containing the descriptor
}

// Name returns the descriptor's file name without its extension.
func (p ProjectDescriptor) Name() string {
	base := filepath.Base(p.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SkipReason says why a subtree was not searched.
type SkipReason int

const (
	SkipUnreadable  SkipReason = iota // ReadDir failed (permissions, raced deletion)
	SkipCycle                         // Directory already visited in this call
	SkipDepth                         // Below the depth ceiling
	SkipMissingRoot                   // Root does not exist or is not a directory
)

func (r SkipReason) String() string {
	switch r {
	case SkipUnreadable:
		return "unreadable"
	case SkipCycle:
		return "cycle"
	case SkipDepth:
		return "depth"
	case SkipMissingRoot:
		return "missing root"
	default:
		return fmt.Sprintf("SkipReason(%d)", int(r))
	}
}

// SkippedDir records a pruned subtree.
type SkippedDir struct {
	Path   string
	Reason SkipReason
	Err    error // Underlying error for SkipUnreadable and SkipMissingRoot, if any
}

// Options tune a discovery call. Zero values select the defaults.
type Options struct {
	MaxDepth     int
	SkipDirNames []string
}

// ClampDepth limits an explicit depth to [1,100].
func ClampDepth(depth int) int {
	return min(max(depth, minMaxDepth), maxMaxDepth)
}

// withDefaults fills unset fields and clamps MaxDepth to [1,100].
func (o Options) withDefaults() Options {
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	o.MaxDepth = ClampDepth(o.MaxDepth)
	if o.SkipDirNames == nil {
		o.SkipDirNames = DefaultSkipDirNames
	}
	return o
}

// Result is the outcome of FindProjectDirectories.
type Result struct {
	Projects []ProjectDescriptor // One per directory, first-seen order
	Skipped  []SkippedDir
}

// Dirs returns the project directories in result order.
func (r Result) Dirs() []string {
	dirs := make([]string, 0, len(r.Projects))
	for _, p := range r.Projects {
		dirs = append(dirs, p.Dir)
	}
	return dirs
}

// SkippedBecause returns the skipped entries with the given reason.
func (r Result) SkippedBecause(reason SkipReason) []SkippedDir {
	var out []SkippedDir
	for _, s := range r.Skipped {
		if s.Reason == reason {
			out = append(out, s)
		}
	}
	return out
}

// dedupeByDir keeps the first descriptor seen in each directory.
func dedupeByDir(found []ProjectDescriptor) []ProjectDescriptor {
	seen := make(map[string]bool, len(found))
	out := make([]ProjectDescriptor, 0, len(found))
	for _, p := range found {
		if seen[p.Dir] {
			continue
		}
		seen[p.Dir] = true
		out = append(out, p)
	}
	return out
}

// extensionSet lowercases extensions and ensures a leading dot.
func extensionSet(extensions []string) (map[string]bool, error) {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no project extensions", ErrInvalidArgument)
	}
	return set, nil
}

// nameSet lowercases directory names for case-insensitive matching.
func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set
}
