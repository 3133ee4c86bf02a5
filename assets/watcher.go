package assets

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watcher feeds file-change events from the cache root into reloads.
// fsnotify does not watch recursively, so every subdirectory is added
// explicitly and newly created directories are picked up on the fly.
type watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching the cache root for content modifications.
// Calling it again without Dispose is a programmer error.
func (c *Cache) Watch() error {
	if c.watcher != nil {
		panic("assets: Watch called twice")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := addRecursive(fsw, c.root); err != nil {
		fsw.Close()
		return err
	}

	w := &watcher{fs: fsw, done: make(chan struct{})}
	c.watcher = w

	go c.watchLoop(w)
	return nil
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

func (c *Cache) watchLoop(w *watcher) {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			c.handleEvent(w, event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("assets: watcher error: %v", err)
		}
	}
}

func (c *Cache) handleEvent(w *watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		// A new directory needs its own watch to stay recursive.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(w.fs, event.Name); err != nil {
				log.Printf("assets: watching %q failed: %v", event.Name, err)
			}
			return
		}
	}

	// Only modified content triggers a reload.
	if !event.Has(fsnotify.Write) {
		return
	}

	key, ok := c.resolveKey(event.Name)
	if !ok {
		return
	}
	c.Reload(key)
}

func (w *watcher) stop() {
	w.fs.Close()
	<-w.done
}
