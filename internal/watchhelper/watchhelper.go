// Package watchhelper watches thumbnail source directories for changes and
// notifies a caller which directories need re-listing, debouncing bursts
// of filesystem events (editors frequently emit several writes per save).
package watchhelper

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/fmthumb/internal/debug"
)

// Watcher debounces fsnotify events per watched directory and republishes
// at most one notification per directory per debounce window.
type Watcher struct {
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	watching map[string]bool

	notify chan string
	done   chan struct{}

	debounce time.Duration
}

// New starts a Watcher with the given debounce interval (0 defaults to
// 200ms).
func New(debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	dw := &Watcher{
		watcher:  w,
		watching: make(map[string]bool),
		notify:   make(chan string, 10),
		done:     make(chan struct{}),
		debounce: debounce,
	}
	go dw.run()
	return dw, nil
}

func (dw *Watcher) run() {
	lastEvent := make(map[string]time.Time)
	pending := make(map[string]bool)
	ticker := time.NewTicker(dw.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-dw.done:
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}

			changed := event.Name
			parent := filepath.Dir(changed)

			dw.mu.Lock()
			switch {
			case dw.watching[parent]:
				lastEvent[parent] = time.Now()
				pending[parent] = true
				debug.Log(debug.THUMB, "watchhelper: %s on %s (parent %s)", event.Op, changed, parent)
			case dw.watching[changed]:
				lastEvent[changed] = time.Now()
				pending[changed] = true
				debug.Log(debug.THUMB, "watchhelper: %s on watched dir %s", event.Op, changed)
			}
			dw.mu.Unlock()

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			debug.Log(debug.THUMB, "watchhelper: fsnotify error: %v", err)

		case now := <-ticker.C:
			for dir := range pending {
				if now.Sub(lastEvent[dir]) < dw.debounce {
					continue
				}
				select {
				case dw.notify <- dir:
					debug.Log(debug.THUMB, "watchhelper: notifying %s", dir)
				default:
				}
				delete(pending, dir)
				delete(lastEvent, dir)
			}
		}
	}
}

// Watch adds path to the watch list. A no-op if already watched.
func (dw *Watcher) Watch(path string) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.watching[path] {
		return nil
	}
	if err := dw.watcher.Add(path); err != nil {
		return err
	}
	dw.watching[path] = true
	return nil
}

// Unwatch removes path from the watch list.
func (dw *Watcher) Unwatch(path string) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if !dw.watching[path] {
		return nil
	}
	dw.watcher.Remove(path)
	delete(dw.watching, path)
	return nil
}

// Notify returns the channel of directories whose listing has gone stale.
func (dw *Watcher) Notify() <-chan string { return dw.notify }

// Close shuts the watcher down.
func (dw *Watcher) Close() error {
	close(dw.done)
	return dw.watcher.Close()
}
