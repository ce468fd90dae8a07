package lint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/gts-modlint/pkg/cache"
	"github.com/odvcencio/gts-modlint/pkg/entrypoint"
	"github.com/odvcencio/gts-modlint/pkg/lang/treesitter"
	"github.com/odvcencio/gts-modlint/pkg/model"
)

// WorkersEnv overrides the default worker count.
const WorkersEnv = "MODLINT_WORKERS"

// LintPaths lints every supported file under paths. Directories are walked
// recursively; files are linted on a bounded worker pool and reported in path
// order. Per-file failures are recorded on the file result; the returned error
// is only set for walk failures or cancellation.
func (l *Linter) LintPaths(ctx context.Context, paths []string) (*model.Report, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := l.CollectFiles(paths)
	if err != nil {
		return nil, err
	}

	results := make([]model.FileResult, len(files))
	jobs := WorkerCount(l.workers, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = l.LintFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &model.Report{GeneratedAt: time.Now().UTC(), Files: results}
	report.Tally()
	return report, nil
}

// LintFile reads and lints one file, consulting the cache and writing fixes
// back when fixing is enabled.
func (l *Linter) LintFile(path string) model.FileResult {
	started := time.Now()
	result := model.FileResult{Path: path}

	src, err := os.ReadFile(path)
	if err != nil {
		result.Error = err.Error()
		l.logger.Warn("read failed", "path", path, "error", err)
		return result
	}

	key := ""
	if l.cache != nil && !l.fix {
		physical := PhysicalPath(path)
		key = cache.Key(physical, src, l.fingerprint+"\x00"+entrypoint.Stamp(physical))
		if diagnostics, ok := l.cache.Load(key); ok {
			result.Diagnostics = diagnostics
			result.Cached = true
			l.logger.Debug("cache hit", "path", path)
			return result
		}
	}

	var lintErr error
	if l.fix {
		var fixed []byte
		var applied int
		fixed, result.Diagnostics, applied, lintErr = l.FixSource(path, src)
		if applied > 0 {
			if err := writeFileAtomic(path, fixed); err != nil {
				result.Error = fmt.Sprintf("write fixes: %v", err)
				l.logger.Warn("write failed", "path", path, "error", err)
				return result
			}
			result.Fixed = applied
		}
	} else {
		result.Diagnostics, lintErr = l.LintSource(path, src)
	}

	if lintErr != nil {
		result.Error = lintErr.Error()
		l.logger.Warn("lint failed", "path", path, "error", lintErr)
	} else if key != "" {
		if err := l.cache.Store(key, path, result.Diagnostics); err != nil {
			l.logger.Debug("cache store failed", "path", path, "error", err)
		}
	}

	l.logger.Debug("linted", "path", path, "diagnostics", len(result.Diagnostics), "elapsed", time.Since(started))
	return result
}

// CollectFiles expands paths into a sorted, de-duplicated list of supported
// source files. Explicit files are kept even when ignore patterns match them.
func (l *Linter) CollectFiles(paths []string) ([]string, error) {
	seen := map[string]bool{}
	files := make([]string, 0, 64)
	add := func(path string) {
		path = filepath.Clean(path)
		if seen[path] {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, root := range paths {
		if strings.TrimSpace(root) == "" {
			return nil, errors.New("path is empty")
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if treesitter.Supports(root) {
				add(root)
			}
			continue
		}
		if err := l.walk(root, add); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (l *Linter) walk(root string, add func(string)) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if entry.IsDir() {
			name := entry.Name()
			if path != root {
				if name == ".git" || name == ".hg" || name == ".svn" || name == "node_modules" {
					return filepath.SkipDir
				}
				if strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				if l.ignore != nil {
					relPath, relErr := filepath.Rel(root, path)
					if relErr == nil && l.ignore.Match(filepath.ToSlash(relPath), true) {
						return filepath.SkipDir
					}
				}
			}
			return nil
		}

		if !treesitter.Supports(path) {
			return nil
		}
		if l.ignore != nil {
			relPath, relErr := filepath.Rel(root, path)
			if relErr == nil && l.ignore.Match(filepath.ToSlash(relPath), false) {
				return nil
			}
		}
		add(path)
		return nil
	})
}

// WorkerCount picks the pool size: an explicit request, then $MODLINT_WORKERS,
// then GOMAXPROCS, never more than the number of tasks.
func WorkerCount(requested, taskCount int) int {
	if taskCount <= 0 {
		return 0
	}

	workers := requested
	if workers <= 0 {
		if raw := strings.TrimSpace(os.Getenv(WorkersEnv)); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				workers = parsed
			}
		}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}
	return min(workers, taskCount)
}

func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".modlint-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, info.Mode().Perm()); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
