/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of fsnotify events a single save
// typically produces (write + chmod, or remove + create for editors that
// write via a temp file and rename) into one reload.
const debounceDelay = 250 * time.Millisecond

// Watcher watches one config file for changes and invokes a callback with
// the freshly reloaded Config, debounced so a single save triggers exactly
// one reload. Adapted from the teacher's internal/watcher XyWatcher,
// narrowed from a generic fsnotify wrapper to one file with a typed reload
// callback.
type Watcher struct {
	fsw  *fsnotify.Watcher
	path string
	done chan struct{}
}

// Watch starts watching path, calling onReload(cfg, nil) after each
// debounced change that parses successfully, or onReload(nil, err) if the
// new file fails to load (the previous in-memory config is left untouched
// by the caller in that case). The file's directory is watched, so saves
// that replace the file by rename keep being seen.
func Watch(path string, onReload func(*Config, error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, path: path, done: make(chan struct{})}

	go func() {
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		fire := func() {
			cfg, err := Load(path)
			onReload(cfg, err)
		}

		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.AfterFunc(debounceDelay, fire)
				} else {
					timer.Reset(debounceDelay)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Printf("[config watcher] error: %v", err)
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

// Close stops the watcher goroutine and releases the underlying fsnotify
// handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
