package cleanup

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestValidateTargetNames(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		policy  Policy
		valid   bool
		invalid []string
	}{
		{"defaults", []string{"bin", "obj"}, PolicyNested, true, nil},
		{"defaults strict", []string{"bin", "obj"}, PolicyStrict, true, nil},
		{"parent traversal", []string{"../x"}, PolicyNested, false, []string{"../x"}},
		{"bare parent", []string{".."}, PolicyStrict, false, []string{".."}},
		{"absolute unix", []string{"/etc"}, PolicyNested, false, []string{"/etc"}},
		{"absolute backslash", []string{`\Windows`}, PolicyNested, false, []string{`\Windows`}},
		{"drive letter", []string{`C:\temp`, "c:tmp"}, PolicyNested, false, []string{`C:\temp`, "c:tmp"}},
		{"blank", []string{"", "   "}, PolicyNested, false, []string{"", "   "}},
		{"dot resolves to project", []string{".", "./", "bin/.."}, PolicyNested, false, []string{".", "./", "bin/.."}},
		{"nested allowed", []string{"bin/Debug", `obj\Release`}, PolicyNested, true, nil},
		{"nested rejected when strict", []string{"bin/Debug", `obj\Release`, "out"}, PolicyStrict, false, []string{"bin/Debug", `obj\Release`}},
		{"hidden traversal", []string{"bin/../../etc"}, PolicyNested, false, []string{"bin/../../etc"}},
		{"backslash traversal", []string{`bin\..\..`}, PolicyNested, false, []string{`bin\..\..`}},
		{"dotted names are fine", []string{".vs", "..cache", "bin..old"}, PolicyStrict, true, nil},
		{"surrounding whitespace tolerated", []string{" bin "}, PolicyStrict, true, nil},
		{"nul byte", []string{"bin\x00"}, PolicyNested, false, []string{"bin\x00"}},
		{"mixed keeps order", []string{"bin", "/etc", "obj", "../x"}, PolicyNested, false, []string{"/etc", "../x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateTargetNames(tt.names, tt.policy)
			if got.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (invalid: %q)", got.Valid, tt.valid, got.Invalid)
			}
			if !slices.Equal(got.Invalid, tt.invalid) {
				t.Errorf("Invalid = %q, want %q", got.Invalid, tt.invalid)
			}
		})
	}
}

func TestValidateTargetNames_IsPure(t *testing.T) {
	names := []string{"bin", "../x"}
	before := slices.Clone(names)
	_ = ValidateTargetNames(names, PolicyNested)
	if !slices.Equal(names, before) {
		t.Errorf("input mutated: %q", names)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Invalid: []string{"/etc", ".."}}
	want := `invalid target subdirectory names: "/etc", ".."`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestTargetPath(t *testing.T) {
	project := filepath.Join("/work", "App")
	tests := map[string]string{
		"bin":         filepath.Join(project, "bin"),
		" obj ":       filepath.Join(project, "obj"),
		"bin/Debug":   filepath.Join(project, "bin", "Debug"),
		`obj\Release`: filepath.Join(project, "obj", "Release"),
		"./bin":       filepath.Join(project, "bin"),
	}
	for name, want := range tests {
		if got := TargetPath(project, name); got != want {
			t.Errorf("TargetPath(%q) = %q, want %q", name, got, want)
		}
		if !strings.HasPrefix(TargetPath(project, name), project) {
			t.Errorf("TargetPath(%q) escaped the project directory", name)
		}
	}
}

func TestPolicy_String(t *testing.T) {
	if PolicyNested.String() != "nested" || PolicyStrict.String() != "strict" {
		t.Errorf("unexpected policy names %q %q", PolicyNested, PolicyStrict)
	}
}
