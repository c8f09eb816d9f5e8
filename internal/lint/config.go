package lint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the configuration file phplint looks for, walking
// up from the working directory.
const ConfigFileName = "phplint.toml"

// Config represents the phplint.toml configuration file.
type Config struct {
	// PHPVersion is the target PHP version (e.g. "8.1").
	PHPVersion string `toml:"php_version"`

	// Paths lists the files and directories to lint when the command
	// line names none.
	Paths []string `toml:"paths"`

	// Excludes lists glob patterns for paths to skip.
	Excludes []string `toml:"excludes"`

	// Integrations lists enabled framework integrations (e.g.
	// "laravel", "symfony").
	Integrations []string `toml:"integrations"`

	// Pedantic force-enables every rule.
	Pedantic bool `toml:"pedantic"`

	// Rules contains per-rule overrides keyed by rule code.
	Rules map[string]RuleSettings `toml:"rules"`
}

// RuleSettings is the per-rule section of the configuration file.
type RuleSettings struct {
	// Enabled overrides the rule's default enabled state. Absent means
	// "use the default".
	Enabled *bool `toml:"enabled"`

	// Level overrides the rule's default level (note, help, warning,
	// error).
	Level string `toml:"level"`

	// Options holds rule-specific settings, validated against the
	// rule's declared schema at resolve time.
	Options map[string]any `toml:"options"`
}

// LoadConfig loads the configuration from path. If path is empty, it
// searches for phplint.toml in the working directory and its parents
// and falls back to the zero config when none exists. An explicit path
// that cannot be read, and any malformed file or unknown key, is a
// fatal configuration error.
func LoadConfig(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		found, err := findConfigFile()
		if err != nil {
			return nil, err
		}
		if found == "" {
			return &Config{}, nil
		}
		configPath = found
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, configErrorf("config file not found: %s", configPath)
		}
		return nil, configErrorf("read config %s: %v", configPath, err)
	}

	var config Config
	meta, err := toml.Decode(string(data), &config)
	if err != nil {
		return nil, configErrorf("parse config %s: %v", configPath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, configErrorf("unknown key %q in %s", undecoded[0].String(), configPath)
	}

	return &config, nil
}

// findConfigFile searches for phplint.toml in the current directory and
// its parents. Returns an empty string when none is found.
func findConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

// ResolveConfig converts the file configuration (plus command-line
// settings) into the registry's resolve input. Invalid level names are
// configuration errors.
func (c *Config) ResolveConfig(only []string, pedantic bool) (ResolveConfig, error) {
	overrides := make(map[string]RuleOverride, len(c.Rules))
	for code, settings := range c.Rules {
		override := RuleOverride{
			Enabled: settings.Enabled,
			Options: settings.Options,
		}
		if settings.Level != "" {
			level, err := ParseLevel(settings.Level)
			if err != nil {
				return ResolveConfig{}, configErrorf("rule %s: %v", code, err)
			}
			override.Level = &level
		}
		overrides[code] = override
	}

	return ResolveConfig{
		Overrides:    overrides,
		Integrations: c.Integrations,
		Pedantic:     c.Pedantic || pedantic,
		Only:         only,
		PHPVersion:   c.PHPVersion,
	}, nil
}

// Excluded reports whether a path matches any exclude pattern. A
// pattern matches the whole slash-separated path, its basename, or any
// single path component (so "vendor" excludes everything under a
// vendor directory).
func (c *Config) Excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range c.Excludes {
		if ok, _ := filepath.Match(pattern, slashed); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
		for _, component := range splitPath(slashed) {
			if ok, _ := filepath.Match(pattern, component); ok {
				return true
			}
		}
	}
	return false
}

func splitPath(slashed string) []string {
	return strings.Split(strings.Trim(slashed, "/"), "/")
}
