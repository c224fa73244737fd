package codebase

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

// REDESIGN: the teacher's java/codebase FileWatcher polls every source
// file's mtime once a second. Watcher instead watches the directory
// tree with inotify/FSEvents via fsnotify and reacts to individual
// write/create/remove events as they happen, debounced per file.
// Grounded on mvp-scale-aOa's internal/adapters/fsnotify/watcher.go.

var ignoreDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	".idea":        true,
	".vscode":      true,
}

var ignoreFileSuffixes = map[string]bool{
	".swp":       true,
	".DS_Store":  true,
}

// Watcher re-parses files under a Codebase's root whenever fsnotify
// reports they were written or created, and drops the parse record of
// files it reports removed or renamed.
type Watcher struct {
	codebase *Codebase
	fw       *fsnotify.Watcher
	done     chan struct{}
	mu       sync.Mutex
	stopped  bool
	logger   commonlog.Logger

	// OnError, if set, is invoked with the parse error produced by a
	// rescan. It is never called concurrently.
	OnError func(path string, err error)
}

// NewWatcher constructs a Watcher bound to c, but does not start
// watching until Start is called. Scan and reparse events are logged
// through commonlog.GetLogger("declscan.watch"), the same logger the
// watch subcommand uses for its own status output.
func NewWatcher(c *Codebase) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		codebase: c,
		fw:       fw,
		done:     make(chan struct{}),
		logger:   commonlog.GetLogger("declscan.watch"),
	}, nil
}

// Start walks the codebase's root directory, registers every
// subdirectory with fsnotify, and begins reacting to changes in a
// background goroutine.
func (w *Watcher) Start() error {
	root, err := filepath.Abs(w.codebase.RootDir())
	if err != nil {
		return err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if shouldIgnoreDir(info.Name()) && path != root {
				return filepath.SkipDir
			}
			return w.fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	debounce := make(map[string]time.Time)
	var dmu sync.Mutex
	const debounceInterval = 50 * time.Millisecond

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name

				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(path); err == nil && info.IsDir() {
						if !shouldIgnoreDir(info.Name()) {
							w.fw.Add(path)
						}
					}
				}

				if shouldIgnorePath(path) {
					continue
				}
				if !sourceExtensions[filepath.Ext(path)] {
					continue
				}

				dmu.Lock()
				last, exists := debounce[path]
				now := time.Now()
				if exists && now.Sub(last) < debounceInterval {
					dmu.Unlock()
					continue
				}
				debounce[path] = now
				dmu.Unlock()

				w.handle(event, path)

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

func (w *Watcher) handle(event fsnotify.Event, path string) {
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.codebase.RemoveFile(path)
		w.logger.Infof("removed %s", path)
		return
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
		if err := w.codebase.ScanFile(path); err != nil {
			w.logger.Errorf("reparsing %s: %s", path, err)
			if w.OnError != nil {
				w.OnError(path, err)
			}
		} else {
			w.logger.Infof("reparsed %s", path)
		}
		w.codebase.Graph().ResolveReferences()
	}
}

// Stop ends monitoring and releases fsnotify's resources. Safe to call
// more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

func shouldIgnoreDir(name string) bool {
	return ignoreDirs[name]
}

func shouldIgnorePath(path string) bool {
	base := filepath.Base(path)
	for suffix := range ignoreFileSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}
	return false
}
