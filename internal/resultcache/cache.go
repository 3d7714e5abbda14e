// Package resultcache keeps classification results on disk so that batch runs
// over unchanged inputs skip scoring.
package resultcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"langid/internal/bayes"
	"langid/internal/modelfile"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// Key identifies one cached result.
type Key [32]byte

// String returns the hex form of the key.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// KeyFor derives the cache key of text scored by a model with the given digest,
// active classes and settings. Any change to one of them yields a new key.
func KeyFor(model modelfile.Digest, classes []string, settings string, text []byte) Key {
	textSum := sha256.Sum256(text)
	h := sha256.New()
	_, _ = h.Write(model[:])
	_, _ = h.Write([]byte(strings.Join(classes, "\x00")))
	_, _ = h.Write([]byte{0xff})
	_, _ = h.Write([]byte(settings))
	_, _ = h.Write([]byte{0xff})
	_, _ = h.Write(textSum[:])
	var out Key
	copy(out[:], h.Sum(nil))
	return out
}

// Cache stores payloads under <dir>/results/<key>.mp.
// A nil *Cache is valid and never hits. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Payload is what gets persisted for one input.
type Payload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Settings string
	Ranked   []bayes.Result
	Created  time.Time
}

// Open initializes a cache at $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir initializes a cache rooted at dir.
func OpenDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Key) string {
	// подкаталог "results", чтобы DropAll не трогал чужие файлы
	return filepath.Join(c.dir, "results", key.String()+".mp")
}

// Put serializes and writes a payload.
func (c *Cache) Put(key Key, payload *Payload) (err error) {
	if c == nil {
		return nil
	}
	if payload == nil {
		return fmt.Errorf("resultcache: nil payload")
	}
	payload.Schema = schemaVersion
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. Entries written under another schema count as misses.
func (c *Cache) Get(key Key) (*Payload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var out Payload
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, false, fmt.Errorf("resultcache: corrupt entry %s: %w", key, err)
	}
	if out.Schema != schemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every cached entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	results := filepath.Join(c.dir, "results")
	old := results + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(results, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
