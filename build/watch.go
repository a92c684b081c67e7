package build

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces editor write bursts into one rebuild.
const debounceDelay = 300 * time.Millisecond

// Watch rebuilds all languages whenever a content file changes. It blocks
// until ctx is cancelled. Build failures are reported through OnLog and do
// not stop the watch loop.
func (b *Builder) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addDirsRecursive(watcher, b.contentDir()); err != nil {
		return err
	}

	rebuildReq, trigger := newDebouncer()
	b.log("watching %s", b.contentDir())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories must be watched too.
			if event.Op.Has(fsnotify.Create) {
				_ = addDirsRecursive(watcher, event.Name)
			}
			if strings.HasSuffix(event.Name, ".md") {
				trigger()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.log("watch error: %v", err)

		case <-rebuildReq:
			if err := b.Run(ctx); err != nil {
				b.log("rebuild failed: %v", err)
			}
		}
	}
}

// newDebouncer returns a rebuild channel and a trigger that fires it after
// a quiet period.
func newDebouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

// addDirsRecursive watches dir and every directory below it. Non-directory
// paths are ignored.
func addDirsRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
