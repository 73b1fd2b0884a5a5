// Package watch regenerates builders while their inputs change.
package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DebounceDelay is how long the watcher waits for a burst of changes to
// settle before reporting it
const DebounceDelay = 100 * time.Millisecond

// changeOps are the events that can alter an input
const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// filter decides which base names are inputs
type filter struct {
	include []string
	exclude []string
}

// accepts reports whether path names an input. Hidden files and the
// temporary files of atomic writes never do. An empty include list
// accepts everything else.
func (f filter) accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp") {
		return false
	}
	if anyMatch(f.exclude, base) {
		return false
	}
	return len(f.include) == 0 || anyMatch(f.include, base)
}

func anyMatch(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// FileWatcher reports settled batches of changed inputs in a set of
// directories
type FileWatcher struct {
	fs       *fsnotify.Watcher
	batches  *Debouncer
	filter   filter
	logger   *zap.Logger
	done     chan struct{}
	stopOnce sync.Once
	loop     sync.WaitGroup
}

// NewFileWatcher creates a watcher calling onChange with each batch.
// patterns select inputs and ignored excludes them, both by base name.
func NewFileWatcher(patterns, ignored []string, onChange func([]string) error, logger *zap.Logger) (*FileWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw := &FileWatcher{
		fs:     fs,
		filter: filter{include: patterns, exclude: ignored},
		logger: logger,
		done:   make(chan struct{}),
	}
	fw.batches = NewDebouncer(DebounceDelay, func(files []string) {
		if err := onChange(files); err != nil {
			logger.Error("change handler failed", zap.Strings("files", files), zap.Error(err))
		}
	})
	return fw, nil
}

// Start adds dirs to the watch list and begins delivering events
func (fw *FileWatcher) Start(dirs []string) error {
	for _, dir := range dirs {
		if err := fw.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.logger.Debug("watching directory", zap.String("dir", dir))
	}

	fw.loop.Add(1)
	go fw.run()
	return nil
}

// Stop ends the event loop and drops undelivered changes. It is safe to
// call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.done)
		fw.loop.Wait()
		fw.batches.Stop()
		err = fw.fs.Close()
	})
	return err
}

func (fw *FileWatcher) run() {
	defer fw.loop.Done()

	for {
		select {
		case <-fw.done:
			return

		case ev, ok := <-fw.fs.Events:
			if !ok {
				return
			}
			if ev.Op&changeOps == 0 || !fw.filter.accepts(ev.Name) {
				continue
			}
			fw.logger.Debug("input changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			fw.batches.Add(ev.Name)

		case err, ok := <-fw.fs.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.Error(err))
		}
	}
}
