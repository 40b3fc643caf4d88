// pattern: Functional Core

package cleanup

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidArgument marks caller mistakes such as an empty target list.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrEscapesProject marks a target whose path leaves its project directory
// through a symlinked segment.
var ErrEscapesProject = errors.New("target escapes project directory")

// Policy selects how strictly target subdirectory names are checked.
type Policy int

const (
	// PolicyNested allows safe nested relative names such as "bin/Debug".
	PolicyNested Policy = iota
	// PolicyStrict allows single path segments only, such as "bin".
	PolicyStrict
)

func (p Policy) String() string {
	switch p {
	case PolicyNested:
		return "nested"
	case PolicyStrict:
		return "strict"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Validation is the outcome of ValidateTargetNames.
type Validation struct {
	Valid   bool
	Invalid []string // Offending names, in input order
}

// ValidationError is returned when cleanup is requested with names that
// fail validation. No filesystem work happens in that case.
type ValidationError struct {
	Invalid []string
}

func (e *ValidationError) Error() string {
	quoted := make([]string, len(e.Invalid))
	for i, n := range e.Invalid {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return "invalid target subdirectory names: " + strings.Join(quoted, ", ")
}

// ValidateTargetNames checks configured target names before anything is
// deleted. A name is rejected when it is blank, absolute (including drive
// and UNC forms), contains a ".." segment, resolves to the project
// directory itself, or, under PolicyStrict, contains any separator.
// Both '/' and '\' count as separators on every platform.
func ValidateTargetNames(names []string, policy Policy) Validation {
	var invalid []string
	for _, name := range names {
		if !validTargetName(name, policy) {
			invalid = append(invalid, name)
		}
	}
	return Validation{Valid: len(invalid) == 0, Invalid: invalid}
}

func validTargetName(name string, policy Policy) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.ContainsRune(trimmed, 0) {
		return false
	}
	if isAbsoluteAnywhere(trimmed) {
		return false
	}

	slashed := strings.ReplaceAll(trimmed, `\`, "/")
	if policy == PolicyStrict && strings.Contains(slashed, "/") {
		return false
	}
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return false
		}
	}

	cleaned := path.Clean(slashed)
	if cleaned == "." {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(cleaned))
}

// isAbsoluteAnywhere rejects paths that are absolute on any supported OS,
// so a config written on Windows cannot escape when used on Linux and the
// other way round.
func isAbsoluteAnywhere(name string) bool {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return true
	}
	if len(name) >= 2 && name[1] == ':' {
		c := name[0]
		return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
	}
	return false
}

// TargetPath joins a validated target name onto a project directory.
func TargetPath(projectDir, name string) string {
	rel := strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	return filepath.Join(projectDir, filepath.FromSlash(rel))
}
