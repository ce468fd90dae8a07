package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/odvcencio/gts-modlint/pkg/entrypoint"
	"github.com/odvcencio/gts-modlint/pkg/ignore"
	"github.com/odvcencio/gts-modlint/pkg/lang/treesitter"
)

func newWatchCmd() *cobra.Command {
	var flags lintFlags
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Lint once, then re-lint files as they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}

			s, err := newSession(flags, []string{target})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := newPrinter(cmd.OutOrStdout())
			report, err := s.linter.LintPaths(ctx, []string{target})
			if err != nil {
				return err
			}
			out.report(report)

			return watchWithFSNotify(ctx, target, interval, s.ignore, func(changed []string) {
				s.relint(cmd.OutOrStdout(), out, changed)
			})
		},
	}

	addLintFlags(cmd, &flags)
	cmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "debounce interval for file events")
	return cmd
}

// relint lints the changed files that still exist. A changed manifest drops
// the memoized entry points and re-lints every file of its package.
func (s *session) relint(w io.Writer, out *printer, changed []string) {
	targets := make([]string, 0, len(changed))
	seen := map[string]bool{}
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			targets = append(targets, path)
		}
	}
	for _, path := range changed {
		if filepath.Base(path) != entrypoint.ManifestName {
			add(path)
			continue
		}
		s.locator.Purge()
		files, err := s.linter.CollectFiles([]string{filepath.Dir(path)})
		if err != nil {
			slog.Warn("manifest re-lint skipped", "path", path, "error", err)
			continue
		}
		for _, file := range files {
			add(file)
		}
	}
	sort.Strings(targets)

	checked, problems := 0, 0
	for _, path := range targets {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !treesitter.Supports(path) {
			continue
		}
		result := s.linter.LintFile(path)
		out.file(result)
		checked++
		problems += len(result.Diagnostics)
	}
	if checked > 0 {
		fmt.Fprintf(w, "rechecked %d files: %d problems\n", checked, problems)
	}
}

func watchWithFSNotify(ctx context.Context, target string, debounce time.Duration, ignoreMatcher *ignore.Matcher, onChange func(changedPaths []string)) error {
	roots, err := watchRoots(target)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	absTarget := roots[0]
	for _, root := range roots {
		if err := addWatchRecursive(watcher, root, absTarget, ignoreMatcher); err != nil {
			return err
		}
	}
	slog.Info("watching", "root", absTarget)

	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	pending := false
	pendingPaths := map[string]bool{}

	resetDebounce := func(path string) {
		pendingPaths[path] = true
		if pending {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		timer.Reset(debounce)
		pending = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			eventPath := filepath.Clean(event.Name)
			if shouldIgnoreWatchPath(eventPath, absTarget, ignoreMatcher) {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(eventPath); statErr == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, eventPath, absTarget, ignoreMatcher)
				}
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			resetDebounce(eventPath)
		case <-timer.C:
			if pending {
				pending = false
				changed := make([]string, 0, len(pendingPaths))
				for path := range pendingPaths {
					changed = append(changed, path)
				}
				sort.Strings(changed)
				pendingPaths = map[string]bool{}
				slog.Debug("change batch", "files", len(changed))
				onChange(changed)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

// watchRoots returns the directory to watch for target: the target itself, or
// the directory holding it when target is a file.
func watchRoots(target string) ([]string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	absTarget = filepath.Clean(absTarget)

	info, err := os.Stat(absTarget)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return []string{absTarget}, nil
	}
	return []string{filepath.Dir(absTarget)}, nil
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string, projectRoot string, ignoreMatcher *ignore.Matcher) error {
	root = filepath.Clean(root)
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if shouldSkipWatchDir(projectRoot, path, entry.Name(), ignoreMatcher) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func shouldSkipWatchDir(root, path, name string, ignoreMatcher *ignore.Matcher) bool {
	if path == root {
		return false
	}

	if name == ".git" || name == ".hg" || name == ".svn" || name == "node_modules" {
		return true
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	if ignoreMatcher != nil {
		if relPath, err := filepath.Rel(root, path); err == nil {
			if ignoreMatcher.Match(filepath.ToSlash(relPath), true) {
				return true
			}
		}
	}
	return false
}

func shouldIgnoreWatchPath(path string, root string, ignoreMatcher *ignore.Matcher) bool {
	base := filepath.Base(path)
	if base == ".DS_Store" || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") || strings.HasPrefix(base, ".#") || strings.HasPrefix(base, ".modlint-") {
		return true
	}
	if ignoreMatcher != nil {
		if relPath, err := filepath.Rel(root, path); err == nil {
			if ignoreMatcher.Match(filepath.ToSlash(relPath), false) {
				return true
			}
		}
	}
	return false
}
