// Package bufwatch drives external-edit invalidation of the File Buffer
// Cache (C5): an fsnotify-based watcher with a polling fallback for
// filesystems where inotify is unavailable (network mounts, some container
// setups) — adapted from the teacher's cmd/lsp-session-manager file
// watcher, generalized from its BSL-specific (.bsl/.os) extension filter to
// an arbitrary workspace-relative tree watch.
package bufwatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/solidlsp/solidlsp/internal/buffer"
	"github.com/solidlsp/solidlsp/internal/logger"
)

// Mode selects how the workspace is watched for external edits.
type Mode string

const (
	ModeOff      Mode = "off"
	ModePolling  Mode = "polling"
	ModeFsnotify Mode = "fsnotify"
	ModeAuto     Mode = "auto"
)

// Change describes one externally observed file mutation.
type Change struct {
	Path string
	Type ChangeType
}

type ChangeType int

const (
	ChangeCreated ChangeType = iota + 1
	ChangeModified
	ChangeDeleted
)

// Watcher invalidates cache entries and notifies a callback when files
// change underneath the workspace root, independent of the cache's own
// lazy mtime check — useful for pushing re-index hints to C6/C7 rather
// than waiting for the next read to notice staleness.
type Watcher struct {
	root      string
	cache     *buffer.Cache
	log       *logger.Logger
	ignoreDir func(name string) bool
	onChange  func(Change)

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	stop    chan struct{}
	running bool
}

// New constructs a Watcher rooted at root. ignoreDir, if non-nil, is
// consulted for every directory name encountered during the initial walk
// and on fsnotify create events, so ignored directories (§4.7) are never
// subscribed to.
func New(root string, cache *buffer.Cache, log *logger.Logger, ignoreDir func(string) bool, onChange func(Change)) *Watcher {
	return &Watcher{root: root, cache: cache, log: log, ignoreDir: ignoreDir, onChange: onChange}
}

// Start begins watching in the given mode. ModeAuto tries fsnotify first
// and falls back to polling if the watcher cannot be constructed (e.g. the
// inotify instance limit is exhausted).
func (w *Watcher) Start(mode Mode, pollInterval time.Duration) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stop = make(chan struct{})
	w.mu.Unlock()

	switch mode {
	case ModeOff:
		return nil
	case ModePolling:
		go w.runPolling(pollInterval)
		return nil
	case ModeFsnotify:
		return w.startFsnotify()
	case ModeAuto:
		if err := w.startFsnotify(); err != nil {
			w.log.Warn(fmt.Sprintf("bufwatch: fsnotify unavailable (%v), falling back to polling", err))
			go w.runPolling(pollInterval)
		}
		return nil
	default:
		return fmt.Errorf("bufwatch: unknown mode %q", mode)
	}
}

// Stop halts whichever watch loop is active.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stop)
	if w.fsw != nil {
		_ = w.fsw.Close()
		w.fsw = nil
	}
}

func (w *Watcher) startFsnotify() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("bufwatch: creating fsnotify watcher: %w", err)
	}

	if err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignoreDir != nil && w.ignoreDir(d.Name()) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	}); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("bufwatch: walking %s: %w", w.root, err)
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	go w.runFsnotify(fsw)
	return nil
}

func (w *Watcher) runFsnotify(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleFsnotifyEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("bufwatch: fsnotify error: " + err.Error())
		}
	}
}

func (w *Watcher) handleFsnotifyEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		rel = ev.Name
	}
	if w.underIgnoredDir(rel) {
		return
	}

	switch {
	case ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0:
		w.cache.Invalidate(ev.Name)
		w.notify(Change{Path: rel, Type: ChangeDeleted})
	case ev.Op&fsnotify.Create != 0:
		if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
			if w.ignoreDir == nil || !w.ignoreDir(info.Name()) {
				_ = fsw.Add(ev.Name)
			}
			return
		}
		w.cache.Invalidate(ev.Name)
		w.notify(Change{Path: rel, Type: ChangeCreated})
	case ev.Op&fsnotify.Write != 0:
		w.cache.Invalidate(ev.Name)
		w.notify(Change{Path: rel, Type: ChangeModified})
	}
}

func (w *Watcher) underIgnoredDir(relPath string) bool {
	if w.ignoreDir == nil {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(relPath), "/") {
		if w.ignoreDir(seg) {
			return true
		}
	}
	return false
}

func (w *Watcher) notify(c Change) {
	if w.onChange != nil {
		w.onChange(c)
	}
}

// runPolling is the inotify-less fallback: periodically re-walk the tree
// and diff mtimes against the last scan, exactly as the teacher's
// PollingWatcher did, generalized away from its BSL-specific extension
// filter.
func (w *Watcher) runPolling(interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	prev := w.scan()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			cur := w.scan()
			w.diff(prev, cur)
			prev = cur
		}
	}
}

func (w *Watcher) scan() map[string]time.Time {
	out := make(map[string]time.Time)
	_ = filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if w.ignoreDir != nil && w.ignoreDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		out[path] = info.ModTime()
		return nil
	})
	return out
}

func (w *Watcher) diff(prev, cur map[string]time.Time) {
	for path, mtime := range cur {
		rel, _ := filepath.Rel(w.root, path)
		if old, ok := prev[path]; !ok {
			w.cache.Invalidate(path)
			w.notify(Change{Path: rel, Type: ChangeCreated})
		} else if !old.Equal(mtime) {
			w.cache.Invalidate(path)
			w.notify(Change{Path: rel, Type: ChangeModified})
		}
	}
	for path := range prev {
		if _, ok := cur[path]; !ok {
			rel, _ := filepath.Rel(w.root, path)
			w.cache.Invalidate(path)
			w.notify(Change{Path: rel, Type: ChangeDeleted})
		}
	}
}
