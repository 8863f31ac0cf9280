// Package buffer implements the File Buffer Cache (C5): an in-memory copy
// of open workspace files, invalidated on mtime+size change, handed out via
// scoped handles with guaranteed release.
package buffer

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// entry is one cached file's state. generation increments every time the
// contents are re-read, letting callers detect a stale borrowed view.
type entry struct {
	mu         sync.RWMutex
	path       string
	contents   []byte
	mtime      time.Time
	size       int64
	generation uint64
	refs       int
}

// Cache owns all open file entries. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewCache constructs an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Handle is a scoped, refcounted borrow of one cached file. Callers must
// call Release exactly once on every path out of the function that
// acquired it.
type Handle struct {
	cache *Cache
	e     *entry
	key   string
}

// Acquire opens (or returns the already-cached) contents of path, refcounting
// the shared entry. The returned Handle must be released by the caller.
func (c *Cache) Acquire(path string) (*Handle, error) {
	c.mu.Lock()
	e, ok := c.entries[path]
	if !ok {
		e = &entry{path: path}
		c.entries[path] = e
	}
	e.refs++
	c.mu.Unlock()

	if err := e.loadIfStale(); err != nil {
		c.release(path, e)
		return nil, err
	}

	return &Handle{cache: c, e: e, key: path}, nil
}

// Contents returns the handle's current (possibly freshly-reloaded)
// byte contents. Calling Contents re-validates against the filesystem
// mtime+size, per §4.5's "tolerate coarse mtime resolution" requirement.
func (h *Handle) Contents() ([]byte, error) {
	if err := h.e.loadIfStale(); err != nil {
		return nil, err
	}
	h.e.mu.RLock()
	defer h.e.mu.RUnlock()
	out := make([]byte, len(h.e.contents))
	copy(out, h.e.contents)
	return out, nil
}

// Generation reports the entry's current reload counter, useful for callers
// that want to detect whether a previously-read view went stale.
func (h *Handle) Generation() uint64 {
	h.e.mu.RLock()
	defer h.e.mu.RUnlock()
	return h.e.generation
}

// Release drops this handle's reference. The last releaser may evict the
// entry from the cache (it will simply be recreated on the next Acquire).
func (h *Handle) Release() {
	h.cache.release(h.key, h.e)
}

func (c *Cache) release(key string, e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.refs--
	if e.refs <= 0 {
		if cur, ok := c.entries[key]; ok && cur == e {
			delete(c.entries, key)
		}
	}
}

// Invalidate forces the next access to re-read path from disk, regardless
// of whether the filesystem's mtime/size actually changed — used by the
// fsnotify-driven watcher (internal/bufwatch) when an external edit arrives
// inside the same mtime granularity window.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	e, ok := c.entries[path]
	c.mu.Unlock()
	if !ok {
		return
	}
	e.mu.Lock()
	e.mtime = time.Time{}
	e.mu.Unlock()
}

// loadIfStale re-reads the file from disk if it has never been loaded, or
// if the filesystem's current (mtime, size) differs from what's recorded.
// Comparing both mtime and size, rather than mtime alone, keeps the check
// correct on filesystems with 1-second mtime resolution (§4.5).
func (e *entry) loadIfStale() error {
	info, err := os.Stat(e.path)
	if err != nil {
		return fmt.Errorf("buffer: stat %s: %w", e.path, err)
	}

	e.mu.RLock()
	fresh := !e.mtime.IsZero() && info.ModTime().Equal(e.mtime) && info.Size() == e.size
	e.mu.RUnlock()
	if fresh {
		return nil
	}

	data, err := os.ReadFile(e.path)
	if err != nil {
		return fmt.Errorf("buffer: reading %s: %w", e.path, err)
	}

	e.mu.Lock()
	e.contents = data
	e.mtime = info.ModTime()
	e.size = info.Size()
	e.generation++
	e.mu.Unlock()
	return nil
}
