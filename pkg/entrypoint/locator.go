// Package entrypoint locates the main module of the package that owns a file,
// following Node's package.json and require.resolve rules.
package entrypoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ManifestName is the package manifest file name.
const ManifestName = "package.json"

// DefaultCacheSize bounds the number of memoized package directories.
const DefaultCacheSize = 1024

var (
	fileExtensions  = []string{".js", ".json", ".node"}
	indexCandidates = []string{"index.js", "index.json", "index.node"}
)

type manifest struct {
	Main any `json:"main"`
}

type resolution struct {
	path string
	ok   bool
}

// Locator resolves package entry points and memoizes results per package
// directory. It is safe for concurrent use.
type Locator struct {
	cache *lru.Cache[string, resolution]
}

// NewLocator creates a Locator whose memo holds up to size packages.
func NewLocator(size int) (*Locator, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, resolution](size)
	if err != nil {
		return nil, err
	}
	return &Locator{cache: cache}, nil
}

// Locate returns the resolved entry point of the nearest package enclosing
// file. ok is false when there is no manifest or nothing resolves.
func (l *Locator) Locate(file string) (string, bool) {
	pkgDir, ok := FindPackageDir(filepath.Dir(file))
	if !ok {
		return "", false
	}
	if l != nil && l.cache != nil {
		if cached, hit := l.cache.Get(pkgDir); hit {
			return cached.path, cached.ok
		}
	}

	path, ok := Resolve(pkgDir)
	if l != nil && l.cache != nil {
		l.cache.Add(pkgDir, resolution{path: path, ok: ok})
	}
	return path, ok
}

// IsEntryPoint reports whether file is the entry point of its package.
func (l *Locator) IsEntryPoint(file string) bool {
	entry, ok := l.Locate(file)
	if !ok {
		return false
	}
	return realpath(file) == entry
}

// Purge drops every memoized resolution.
func (l *Locator) Purge() {
	if l != nil && l.cache != nil {
		l.cache.Purge()
	}
}

// Stamp summarizes what the entry-point check of file depends on: the
// enclosing manifest's location and content and the entry it resolves to. It
// is empty when no manifest encloses file. Stamp never consults a memo.
func Stamp(file string) string {
	pkgDir, ok := FindPackageDir(filepath.Dir(file))
	if !ok {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(pkgDir, ManifestName))
	if err != nil {
		return pkgDir
	}
	entry, _ := Resolve(pkgDir)
	return strings.Join([]string{pkgDir, entry, string(data)}, "\x00")
}

// FindPackageDir walks upward from dir looking for a package manifest.
func FindPackageDir(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		if isFile(filepath.Join(dir, ManifestName)) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Resolve resolves a package directory to its entry file the way
// require.resolve does for an absolute directory path.
func Resolve(dir string) (string, bool) {
	if path, ok := loadAsFile(dir); ok {
		return realpath(path), true
	}
	if path, ok := loadAsDirectory(dir); ok {
		return realpath(path), true
	}
	return "", false
}

func loadAsFile(path string) (string, bool) {
	if isFile(path) {
		return path, true
	}
	for _, ext := range fileExtensions {
		if isFile(path + ext) {
			return path + ext, true
		}
	}
	return "", false
}

func loadIndex(dir string) (string, bool) {
	for _, name := range indexCandidates {
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func loadAsDirectory(dir string) (string, bool) {
	manifestPath := filepath.Join(dir, ManifestName)
	if isFile(manifestPath) {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			return "", false
		}
		var m manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return "", false
		}
		if main, ok := m.Main.(string); ok && strings.TrimSpace(main) != "" {
			target := filepath.Join(dir, filepath.FromSlash(main))
			if path, ok := loadAsFile(target); ok {
				return path, true
			}
			if path, ok := loadIndex(target); ok {
				return path, true
			}
		}
	}
	return loadIndex(dir)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func realpath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
