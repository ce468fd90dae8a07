// Package cache stores per-file lint results on disk, keyed by a digest of the
// file content and the configuration that produced them.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/odvcencio/gts-modlint/pkg/model"
)

// SchemaVersion changes whenever the payload layout or rule output changes.
const SchemaVersion uint16 = 1

// AppName names the cache directory.
const AppName = "modlint"

// Payload is one cached lint result.
type Payload struct {
	Schema      uint16             `msgpack:"schema"`
	Path        string             `msgpack:"path"`
	Diagnostics []model.Diagnostic `msgpack:"diagnostics"`
}

// Cache is a directory of msgpack payloads. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns $MODLINT_CACHE_DIR, or $XDG_CACHE_HOME/modlint, or
// ~/.cache/modlint.
func DefaultDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("MODLINT_CACHE_DIR")); dir != "" {
		return dir, nil
	}
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, AppName), nil
}

// Open creates the cache directory if needed.
func Open(dir string) (*Cache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Key digests everything a lint result depends on.
func Key(path string, source []byte, fingerprint string) string {
	h := sha256.New()
	var schema [2]byte
	binary.BigEndian.PutUint16(schema[:], SchemaVersion)
	h.Write(schema[:])
	for _, part := range [][]byte{[]byte(path), source, []byte(fingerprint)} {
		var size [8]byte
		binary.BigEndian.PutUint64(size[:], uint64(len(part)))
		h.Write(size[:])
		h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) pathFor(key string) string {
	return filepath.Join(c.dir, "results", key[:2], key+".mp")
}

// Store writes diagnostics under key, replacing any previous entry atomically.
func (c *Cache) Store(key, path string, diagnostics []model.Diagnostic) error {
	if c == nil || len(key) < 2 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	payload := Payload{Schema: SchemaVersion, Path: path, Diagnostics: diagnostics}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Load returns the diagnostics stored under key. A missing, stale or corrupt
// entry is a miss.
func (c *Cache) Load(key string) ([]model.Diagnostic, bool) {
	if c == nil || len(key) < 2 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false
	}
	if payload.Schema != SchemaVersion {
		return nil, false
	}
	return payload.Diagnostics, true
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "results"))
}
