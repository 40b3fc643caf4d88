package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"binclean/internal/cleanup"
	"binclean/internal/discovery"
)

const (
	configDirName  = "binclean"
	configFileName = "config.yaml"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validThemes = map[string]bool{"latte": true, "frappe": true, "macchiato": true, "mocha": true}

type Config struct {
	TargetSubdirectories []string `yaml:"target_subdirectories"`
	ProjectExtensions    []string `yaml:"project_extensions"`
	MaxDepth             int      `yaml:"max_depth"`
	SkipDirs             []string `yaml:"skip_dirs"`
	StrictNames          bool     `yaml:"strict_names"`
	ScanPaths            []string `yaml:"scan_paths"`
	LogLevel             string   `yaml:"log_level"`
	Theme                string   `yaml:"theme"`
}

func DefaultConfig() Config {
	return Config{
		TargetSubdirectories: []string{"bin", "obj"},
		ProjectExtensions:    append([]string(nil), discovery.DefaultExtensions...),
		MaxDepth:             discovery.DefaultMaxDepth,
		LogLevel:             "info",
		Theme:                "mocha",
	}
}

// Load reads the config from the default location.
func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFromDir reads config.yaml from the given directory.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, configFileName))
}

// LoadFrom reads the config at configPath. A missing file yields the
// defaults. Unknown keys and wrongly typed values are errors.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("parse %s: %w", configPath, err)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = discovery.DefaultMaxDepth
	}

	return cfg, nil
}

// Validate checks the config before any filesystem work. All problems are
// reported together in one error.
func (c *Config) Validate() error {
	var errs error

	if len(c.TargetSubdirectories) == 0 {
		errs = multierr.Append(errs, errors.New("target_subdirectories must not be empty"))
	} else if v := cleanup.ValidateTargetNames(c.TargetSubdirectories, c.Policy()); !v.Valid {
		errs = multierr.Append(errs, &cleanup.ValidationError{Invalid: v.Invalid})
	}

	if len(c.ProjectExtensions) == 0 {
		errs = multierr.Append(errs, errors.New("project_extensions must not be empty"))
	}
	for _, ext := range c.ProjectExtensions {
		ext = strings.TrimSpace(ext)
		if ext == "" || ext == "." {
			errs = multierr.Append(errs, errors.New("project_extensions contains an empty entry"))
			continue
		}
		if strings.ContainsAny(ext, `/\`) {
			errs = multierr.Append(errs, fmt.Errorf("project_extensions entry %q must not contain a path separator", ext))
		}
	}

	if c.MaxDepth < 0 {
		errs = multierr.Append(errs, fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = multierr.Append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error, got: %s", c.LogLevel))
	}
	if !validThemes[c.Theme] {
		errs = multierr.Append(errs, fmt.Errorf("theme must be one of latte, frappe, macchiato, mocha, got: %s", c.Theme))
	}

	return errs
}

// Policy returns the target-name policy selected by strict_names.
func (c *Config) Policy() cleanup.Policy {
	if c.StrictNames {
		return cleanup.PolicyStrict
	}
	return cleanup.PolicyNested
}

// DiscoveryOptions maps the config onto discovery options. The skip list
// is the built-in one plus skip_dirs plus the leading segment of every
// target subdirectory, so build output is never scanned for projects.
func (c *Config) DiscoveryOptions() discovery.Options {
	skip := append([]string(nil), discovery.DefaultSkipDirNames...)
	skip = append(skip, c.SkipDirs...)
	for _, name := range c.TargetSubdirectories {
		rel := strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
		if first, _, _ := strings.Cut(rel, "/"); first != "" && first != "." && first != ".." {
			skip = append(skip, strings.ToLower(first))
		}
	}
	return discovery.Options{MaxDepth: c.MaxDepth, SkipDirNames: skip}
}

// ResolveScanPaths expands "~" and makes each configured scan path absolute.
func (c *Config) ResolveScanPaths() []string {
	paths := make([]string, 0, len(c.ScanPaths))
	for _, p := range c.ScanPaths {
		paths = append(paths, ExpandPath(p))
	}
	return paths
}

// ExpandPath expands a leading "~" to the home directory and returns an
// absolute path. The input is returned cleaned if either step fails.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// DataDir returns the directory holding the log file and the run lock.
// If configDir is set it is used as-is.
func DataDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	return filepath.Dir(getConfigPath())
}

func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, configDirName, configFileName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", configDirName, configFileName)
	}

	return filepath.Join(home, ".config", configDirName, configFileName)
}
