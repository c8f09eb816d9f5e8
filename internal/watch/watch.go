// Package watch provides filesystem watching for continuous lint runs.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches rapid successive writes (editors often save a
// file several times in quick succession) into one event.
const debounceWindow = 250 * time.Millisecond

// Watcher watches directories for PHP file changes and emits debounced
// batches of changed paths.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	isPHPFile func(name string) bool

	// Events receives one batch of changed files per debounce window.
	Events chan []string

	// Errors receives watcher errors.
	Errors chan error

	done chan struct{}
}

// New creates a watcher over the given root paths. Directories are
// watched recursively; hidden directories are skipped. isPHPFile
// filters events down to lintable files.
func New(roots []string, isPHPFile func(name string) bool) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		isPHPFile: isPHPFile,
		Events:    make(chan []string, 16),
		Errors:    make(chan error, 16),
		done:      make(chan struct{}),
	}

	for _, root := range roots {
		if err := w.add(root); err != nil {
			_ = fsWatcher.Close()
			return nil, err
		}
	}

	go w.run()
	return w, nil
}

// add registers a file or directory tree with the underlying watcher.
func (w *Watcher) add(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	if !info.IsDir() {
		return w.fsWatcher.Add(root)
	}

	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") && entry.Name() != "." {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// run collects raw filesystem events into debounced batches.
func (w *Watcher) run() {
	var (
		pending = make(map[string]bool)
		timer   *time.Timer
		fire    <-chan time.Time
	)

	flush := func() {
		batch := make([]string, 0, len(pending))
		for path := range pending {
			batch = append(batch, path)
		}
		pending = make(map[string]bool)
		fire = nil
		select {
		case w.Events <- batch:
		case <-w.done:
		}
	}

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories must be picked up so files created in
			// them later are seen.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.add(event.Name)
					continue
				}
			}
			if !w.isPHPFile(event.Name) {
				continue
			}
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceWindow)
			}
			fire = timer.C

		case <-fire:
			flush()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}
