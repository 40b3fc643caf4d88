// pattern: Imperative Shell

package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FindEnclosingProject searches upward from the directory containing
// startFile for the nearest project descriptor. Only the immediate children
// of each directory are examined, in name order.
//
// Not finding one is not an error: (nil, nil) is returned when the
// filesystem root, a revisited directory, an unreadable directory or the
// step cap is reached first.
func (s *Scanner) FindEnclosingProject(startFile string, extensions []string) (*ProjectDescriptor, error) {
	if strings.TrimSpace(startFile) == "" {
		return nil, fmt.Errorf("%w: empty start path", ErrInvalidArgument)
	}
	exts, err := extensionSet(extensions)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(startFile)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", startFile, err)
	}

	dir := filepath.Dir(abs)
	visited := make(map[string]struct{})

	for step := 0; step < maxUpwardSteps; step++ {
		key := canonicalPath(dir)
		if _, seen := visited[key]; seen {
			s.logger.Debug("enclosing search hit a cycle", "dir", dir)
			return nil, nil
		}
		visited[key] = struct{}{}

		entries, err := os.ReadDir(dir)
		if err != nil {
			s.logger.Debug("enclosing search stopped at unreadable directory", "dir", dir, "error", err)
			return nil, nil
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if exts[strings.ToLower(filepath.Ext(entry.Name()))] {
				return &ProjectDescriptor{
					Path: filepath.Join(dir, entry.Name()),
					Dir:  dir,
				}, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}

	s.logger.Debug("enclosing search reached step limit", "start", abs, "limit", maxUpwardSteps)
	return nil, nil
}
