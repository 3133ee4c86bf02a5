package assets

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when a key does not exist on the backing store.
	ErrNotFound = errors.New("assets: not found")
	// ErrTypeMismatch is returned when a key is already loaded under a
	// different type than the one requested.
	ErrTypeMismatch = errors.New("assets: type mismatch")
	// ErrUnsupportedType is returned when no loader is registered for
	// the requested result type.
	ErrUnsupportedType = errors.New("assets: unsupported type")
)

const (
	reloadAttempts = 5
	reloadBackoff  = 500 * time.Millisecond
)

// Change is published to subscribers after a watched file was modified
// and its cache entry reloaded.
type Change struct {
	Key   string
	Value any
}

type entry struct {
	key      string
	value    any
	typ      reflect.Type
	origin   string
	retained bool
}

// Cache is the resource cache. All entry-table access is serialized
// behind one mutex; the watcher goroutine and the frame loop may
// interleave freely.
type Cache struct {
	root     string
	registry *Registry

	mu      sync.Mutex
	entries map[string]*entry
	subs    []func(Change)

	watcher *watcher

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewCache creates a cache rooted at the given directory, loading
// through the given registry. The watcher is not started until Watch
// is called.
func NewCache(root string, registry *Registry) *Cache {
	return &Cache{
		root:     root,
		registry: registry,
		entries:  make(map[string]*entry),
		sleep:    time.Sleep,
	}
}

// Root returns the backing store root directory.
func (c *Cache) Root() string { return c.root }

// normalizeKey cleans a store-relative key so that every spelling of
// the same file maps to one entry. This also removes the ambiguity of
// one file change matching several keys: at most one normalized key can
// resolve to a given origin path.
func normalizeKey(key string) string {
	return path.Clean(strings.ReplaceAll(key, "\\", "/"))
}

// Option configures a single get request.
type Option func(*getOptions)

type getOptions struct {
	retain bool
}

// Retain marks the entry as exempt from transition sweeps. On an
// already-loaded entry it upgrades the flag in place; it never
// downgrades.
func Retain() Option {
	return func(o *getOptions) { o.retain = true }
}

// TryGet returns the resource stored under key as a T, loading it on
// first request. Failure is a normal return value: a missing file, a
// type conflict with an existing entry, or an unregistered result type
// all come back as wrapped errors. Get is built on top of this.
func TryGet[T any](c *Cache, key string, opts ...Option) (T, error) {
	var zero T
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	key = normalizeKey(key)
	want := reflect.TypeFor[T]()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		if e.typ != want {
			return zero, fmt.Errorf("%w: %q is loaded as %s, requested %s",
				ErrTypeMismatch, key, e.typ, want)
		}
		if o.retain && !e.retained {
			e.retained = true
		}
		return e.value.(T), nil
	}

	loader := c.registry.loaderFor(want)
	if loader == nil {
		return zero, fmt.Errorf("%w: %s", ErrUnsupportedType, want)
	}

	origin := filepath.Join(c.root, filepath.FromSlash(key))
	if _, err := os.Stat(origin); err != nil {
		return zero, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	value, err := loader.Load(origin)
	if err != nil {
		log.Printf("assets: loading %q failed: %v", key, err)
		return zero, fmt.Errorf("assets: load %q: %w", key, err)
	}

	c.entries[key] = &entry{
		key:      key,
		value:    value,
		typ:      want,
		origin:   filepath.Clean(origin),
		retained: o.retain,
	}
	return value.(T), nil
}

// Get returns the resource stored under key as a T, loading it on first
// request. A failed get is treated as a programmer error (a missing or
// misdeclared asset) and panics; use TryGet to handle failure.
func Get[T any](c *Cache, key string, opts ...Option) T {
	value, err := TryGet[T](c, key, opts...)
	if err != nil {
		panic(err)
	}
	return value
}

// Has reports whether key is currently loaded.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[normalizeKey(key)]
	return ok
}

// IsRetained reports whether key is loaded and marked retained.
func (c *Cache) IsRetained(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[normalizeKey(key)]
	return ok && e.retained
}

// Len returns the number of loaded entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the loaded keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unload releases the resource stored under key and removes the entry.
// It reports whether anything was removed.
func (c *Cache) Unload(key string) bool {
	key = normalizeKey(key)

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	c.release(e)
	return true
}

// Reload unloads and re-loads key under its recorded type and
// retention. It reports whether a reload actually happened; a key that
// was never loaded returns false. A file locked by a concurrent writer
// is probed up to five times with increasing backoff before the change
// is treated as unobservable and the stale value kept.
//
// The backoff blocks the calling goroutine for its full duration, so
// this must not run on the frame-loop thread; the watcher calls it from
// its own goroutine.
func (c *Cache) Reload(key string) bool {
	key = normalizeKey(key)

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	loader := c.registry.loaderFor(e.typ)
	origin := e.origin
	c.mu.Unlock()

	if loader == nil {
		return false
	}

	if !c.probeReadable(origin) {
		log.Printf("assets: %q stayed unreadable, keeping stale value", key)
		return false
	}

	value, err := loader.Load(origin)
	if err != nil {
		log.Printf("assets: reloading %q failed: %v", key, err)
		return false
	}

	c.mu.Lock()
	e, ok = c.entries[key]
	if !ok {
		// Unloaded while we were reading; drop the fresh value.
		c.mu.Unlock()
		loader.Release(value)
		return false
	}
	old := e.value
	e.value = value
	c.mu.Unlock()

	loader.Release(old)
	c.publish(Change{Key: key, Value: value})
	return true
}

// probeReadable retries the file-open probe with increasing backoff to
// ride out transient locks held by concurrent writers.
func (c *Cache) probeReadable(origin string) bool {
	for attempt := 1; attempt <= reloadAttempts; attempt++ {
		f, err := os.Open(origin)
		if err == nil {
			f.Close()
			return true
		}
		if attempt < reloadAttempts {
			c.sleep(reloadBackoff * time.Duration(attempt))
		}
	}
	return false
}

// OnChange subscribes to reload notifications. Subscribers run on the
// watcher goroutine in registration order.
func (c *Cache) OnChange(fn func(Change)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

func (c *Cache) publish(change Change) {
	c.mu.Lock()
	subs := make([]func(Change), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}

// SweepTransition applies the automatic eviction rule for a context
// transition: a real transition between two distinct contexts unloads
// every non-retained entry. Transitions to the same context and the
// first transition into the initial context do not sweep.
func (c *Cache) SweepTransition(from, to any) {
	if from == nil || from == to {
		return
	}
	c.sweep(false)
}

// sweep unloads entries; with all set, retained entries go too.
func (c *Cache) sweep(all bool) {
	c.mu.Lock()
	var victims []*entry
	for key, e := range c.entries {
		if all || !e.retained {
			victims = append(victims, e)
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()

	for _, e := range victims {
		c.release(e)
	}
}

func (c *Cache) release(e *entry) {
	if loader := c.registry.loaderFor(e.typ); loader != nil {
		loader.Release(e.value)
	}
}

// resolveKey maps a changed filesystem path to a loaded key. The first
// match wins; keys are normalized at insert so at most one entry can
// record a given origin.
func (c *Cache) resolveKey(changed string) (string, bool) {
	changed = filepath.Clean(changed)

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if e.origin == changed {
			return key, true
		}
	}
	return "", false
}

// Dispose releases every entry, retained or not, and stops the watcher.
func (c *Cache) Dispose() {
	if c.watcher != nil {
		c.watcher.stop()
		c.watcher = nil
	}
	c.sweep(true)
}
