// Package config discovers and decodes modlint.toml.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "modlint.toml"

// RuleConfig is the configured state of one rule.
type RuleConfig struct {
	Enabled bool
	Options map[string]any
}

// Config is the effective configuration.
type Config struct {
	// Path is the file the configuration was loaded from; empty for defaults.
	Path    string
	Root    string
	Ignore  []string
	Workers int
	Cache   bool
	Rules   map[string]RuleConfig
}

type fileConfig struct {
	Ignore  []string                  `toml:"ignore"`
	Workers int                       `toml:"workers"`
	Cache   *bool                     `toml:"cache"`
	Rules   map[string]map[string]any `toml:"rules"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{Cache: true, Rules: map[string]RuleConfig{}}
}

// Find walks upward from startDir looking for modlint.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest modlint.toml above startDir, or the defaults.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes the configuration file at path.
func Load(path string) (*Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if raw.Workers < 0 {
		return nil, fmt.Errorf("%s: workers must not be negative", path)
	}

	cfg := Default()
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	cfg.Ignore = raw.Ignore
	cfg.Workers = raw.Workers
	if meta.IsDefined("cache") && raw.Cache != nil {
		cfg.Cache = *raw.Cache
	}

	for name, table := range raw.Rules {
		rule := RuleConfig{Enabled: true}
		for key, value := range table {
			if key == "enabled" {
				enabled, ok := value.(bool)
				if !ok {
					return nil, fmt.Errorf("%s: [rules.%s].enabled must be a boolean", path, name)
				}
				rule.Enabled = enabled
				continue
			}
			if rule.Options == nil {
				rule.Options = map[string]any{}
			}
			rule.Options[key] = value
		}
		cfg.Rules[name] = rule
	}
	return cfg, nil
}

// Fingerprint identifies the settings that affect lint output.
func (c *Config) Fingerprint() string {
	if c == nil {
		return ""
	}
	names := make([]string, 0, len(c.Rules))
	for name := range c.Rules {
		names = append(names, name)
	}
	sort.Strings(names)

	type entry struct {
		Name    string         `json:"name"`
		Enabled bool           `json:"enabled"`
		Options map[string]any `json:"options,omitempty"`
	}
	entries := make([]entry, 0, len(names))
	for _, name := range names {
		rule := c.Rules[name]
		entries = append(entries, entry{Name: name, Enabled: rule.Enabled, Options: rule.Options})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return ""
	}
	return string(data)
}
