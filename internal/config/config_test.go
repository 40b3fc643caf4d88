package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"binclean/internal/cleanup"
	"binclean/internal/discovery"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !slices.Equal(cfg.TargetSubdirectories, []string{"bin", "obj"}) {
		t.Errorf("TargetSubdirectories = %v", cfg.TargetSubdirectories)
	}
	if !slices.Equal(cfg.ProjectExtensions, []string{".csproj", ".fsproj", ".vbproj", ".sln"}) {
		t.Errorf("ProjectExtensions = %v", cfg.ProjectExtensions)
	}
	if cfg.MaxDepth != 20 {
		t.Errorf("MaxDepth = %d, want 20", cfg.MaxDepth)
	}
	if cfg.LogLevel != "info" || cfg.Theme != "mocha" {
		t.Errorf("LogLevel = %q, Theme = %q", cfg.LogLevel, cfg.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefaultConfig_DoesNotAliasPackageDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProjectExtensions[0] = ".changed"
	if discovery.DefaultExtensions[0] != ".csproj" {
		t.Fatal("DefaultConfig must copy discovery.DefaultExtensions")
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.MaxDepth != 20 || len(cfg.TargetSubdirectories) != 2 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFrom_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Theme != "mocha" {
		t.Errorf("Theme = %q, want default", cfg.Theme)
	}
}

func TestLoadFullConfig(t *testing.T) {
	configPath := writeConfig(t, `
target_subdirectories: [bin, obj, "bin/Debug"]
project_extensions: [.csproj, .sln]
max_depth: 8
skip_dirs: [vendor, artifacts]
strict_names: false
scan_paths: [~/src, /work]
log_level: debug
theme: latte
`)

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if !slices.Equal(cfg.TargetSubdirectories, []string{"bin", "obj", "bin/Debug"}) {
		t.Errorf("TargetSubdirectories = %v", cfg.TargetSubdirectories)
	}
	if !slices.Equal(cfg.ProjectExtensions, []string{".csproj", ".sln"}) {
		t.Errorf("ProjectExtensions = %v", cfg.ProjectExtensions)
	}
	if cfg.MaxDepth != 8 {
		t.Errorf("MaxDepth = %d, want 8", cfg.MaxDepth)
	}
	if cfg.LogLevel != "debug" || cfg.Theme != "latte" {
		t.Errorf("LogLevel = %q, Theme = %q", cfg.LogLevel, cfg.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadFrom_RejectsWrongTypes(t *testing.T) {
	tests := map[string]string{
		"scalar instead of list": "target_subdirectories: bin\n",
		"map instead of string":  "target_subdirectories:\n  - {name: bin}\n",
		"string depth":           "max_depth: deep\n",
		"unknown key":            "targetSubdirectories: [bin]\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFrom(writeConfig(t, content)); err == nil {
				t.Error("expected a parse error")
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("max_depth: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", cfg.MaxDepth)
	}
}

func TestValidate_ReportsAllProblemsTogether(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetSubdirectories = []string{"bin", "../..", "/etc"}
	cfg.ProjectExtensions = []string{"", "sub/.csproj"}
	cfg.MaxDepth = -1
	cfg.LogLevel = "loud"
	cfg.Theme = "neon"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	var verr *cleanup.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error should wrap *cleanup.ValidationError, got %v", err)
	}
	if !slices.Equal(verr.Invalid, []string{"../..", "/etc"}) {
		t.Errorf("Invalid = %q", verr.Invalid)
	}

	msg := err.Error()
	for _, want := range []string{"empty entry", "path separator", "max_depth", "log_level", "theme"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should mention %q", msg, want)
		}
	}
}

func TestValidate_EmptyLists(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetSubdirectories = []string{}
	cfg.ProjectExtensions = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	for _, want := range []string{"target_subdirectories must not be empty", "project_extensions must not be empty"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestValidate_StrictNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetSubdirectories = []string{"bin/Debug"}

	if err := cfg.Validate(); err != nil {
		t.Errorf("nested policy should accept bin/Debug: %v", err)
	}

	cfg.StrictNames = true
	if cfg.Policy() != cleanup.PolicyStrict {
		t.Fatalf("Policy() = %v, want strict", cfg.Policy())
	}
	if err := cfg.Validate(); err == nil {
		t.Error("strict policy should reject bin/Debug")
	}
}

func TestDiscoveryOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.DiscoveryOptions()
	if opts.MaxDepth != 20 || !slices.Contains(opts.SkipDirNames, "node_modules") {
		t.Errorf("default options = %+v", opts)
	}

	cfg.SkipDirs = []string{"vendor"}
	opts = cfg.DiscoveryOptions()
	if !slices.Contains(opts.SkipDirNames, "vendor") || !slices.Contains(opts.SkipDirNames, "node_modules") {
		t.Errorf("SkipDirNames = %v, want defaults plus vendor", opts.SkipDirNames)
	}
}

func TestDiscoveryOptions_SkipsTargetDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetSubdirectories = []string{"out", `Artifacts\Release`, "bin/Debug"}
	opts := cfg.DiscoveryOptions()
	for _, want := range []string{"out", "artifacts", "bin"} {
		if !slices.Contains(opts.SkipDirNames, want) {
			t.Errorf("SkipDirNames = %v, want it to contain %q", opts.SkipDirNames, want)
		}
	}
	if slices.Contains(opts.SkipDirNames, "release") || slices.Contains(opts.SkipDirNames, "debug") {
		t.Errorf("only the leading segment should be skipped: %v", opts.SkipDirNames)
	}
}

func TestResolveScanPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg := Config{ScanPaths: []string{"~/src", "/work/../opt"}}
	got := cfg.ResolveScanPaths()
	want := []string{filepath.Join(home, "src"), filepath.Clean("/opt")}
	if !slices.Equal(got, want) {
		t.Errorf("ResolveScanPaths() = %v, want %v", got, want)
	}
}

func TestDataDir(t *testing.T) {
	if got := DataDir("/custom"); got != "/custom" {
		t.Errorf("DataDir(/custom) = %q", got)
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DataDir(""); got != filepath.Join("/xdg", "binclean") {
		t.Errorf("DataDir(\"\") = %q, want /xdg/binclean", got)
	}
}
