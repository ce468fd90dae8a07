package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gts-modlint/pkg/cache"
	"github.com/odvcencio/gts-modlint/pkg/config"
	"github.com/odvcencio/gts-modlint/pkg/entrypoint"
	"github.com/odvcencio/gts-modlint/pkg/ignore"
	"github.com/odvcencio/gts-modlint/pkg/lint"
	"github.com/odvcencio/gts-modlint/pkg/rules"
)

// lintFlags are the flags shared by lint and watch.
type lintFlags struct {
	configPath string
	rules      []string
	noCache    bool
	workers    int
	fix        bool
}

type session struct {
	cfg     *config.Config
	locator *entrypoint.Locator
	ignore  *ignore.Matcher
	linter  *lint.Linter
}

func newSession(flags lintFlags, paths []string) (*session, error) {
	cfg, err := loadConfig(flags.configPath, paths)
	if err != nil {
		return nil, err
	}

	locator, err := entrypoint.NewLocator(entrypoint.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	enabled, err := rules.NewRegistry(locator).Select(cfg.Rules, flags.rules)
	if err != nil {
		return nil, err
	}
	if len(enabled) == 0 {
		return nil, errors.New("no rules enabled")
	}

	matcher, err := loadIgnore(cfg)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if flags.workers > 0 {
		workers = flags.workers
	}

	opts := lint.Options{
		Rules:       enabled,
		Ignore:      matcher,
		Workers:     workers,
		Fix:         flags.fix,
		Fingerprint: fingerprint(cfg, flags.rules),
		Logger:      slog.Default(),
	}
	if cfg.Cache && !flags.noCache && !flags.fix {
		opts.Cache = openCache()
	}

	slog.Debug("session ready", "config", cfg.Path, "rules", len(enabled), "ignore", matcher.Len(), "cache", opts.Cache != nil)
	return &session{cfg: cfg, locator: locator, ignore: matcher, linter: lint.New(opts)}, nil
}

func loadConfig(path string, targets []string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	start := "."
	if len(targets) > 0 {
		start = targets[0]
		if info, err := os.Stat(start); err == nil && !info.IsDir() {
			start = filepath.Dir(start)
		}
	}
	return config.Discover(start)
}

// loadIgnore combines the configured ignore list with the project's ignore
// file. The file is read from the config root, or the working directory.
func loadIgnore(cfg *config.Config) (*ignore.Matcher, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	fromConfig := ignore.ParsePatterns(cfg.Ignore)

	fromFile, err := ignore.Load(filepath.Join(root, ignore.FileName))
	if errors.Is(err, os.ErrNotExist) {
		return fromConfig, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ignore.FileName, err)
	}
	return ignore.Merge(fromConfig, fromFile), nil
}

func openCache() *cache.Cache {
	dir, err := cache.DefaultDir()
	if err != nil {
		slog.Warn("cache disabled", "error", err)
		return nil
	}
	c, err := cache.Open(dir)
	if err != nil {
		slog.Warn("cache disabled", "dir", dir, "error", err)
		return nil
	}
	return c
}

func fingerprint(cfg *config.Config, only []string) string {
	return strings.Join([]string{version, cfg.Fingerprint(), strings.Join(only, ",")}, "|")
}
