// Package watch keeps a persisted graph in sync with a directory tree
// by re-running the pipeline on changed files as they're saved,
// debounced the way the teacher's daemon package does it.
package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/javagraph/javagraph/internal/discovery"
	"github.com/javagraph/javagraph/internal/pipeline"
	"github.com/javagraph/javagraph/internal/store"
	"github.com/javagraph/javagraph/internal/util"
)

// Watcher watches one or more directory roots for .java file changes
// and re-analyzes each changed file, pushing the result into an
// (optional) Store.
type Watcher struct {
	fsWatcher       *fsnotify.Watcher
	store           *store.Store
	excludePatterns []string
	workers         int
	debounceMs      atomic.Int64

	mu           sync.Mutex
	pendingFiles map[string]time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Config mirrors config.AnalyzerConfig plus the destination store.
type Config struct {
	Store           *store.Store
	ExcludePatterns []string
	Workers         int
	DebounceMs      int
}

func New(cfg Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounceMs := cfg.DebounceMs
	if debounceMs == 0 {
		debounceMs = 200
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	w := &Watcher{
		fsWatcher:       fsWatcher,
		store:           cfg.Store,
		excludePatterns: cfg.ExcludePatterns,
		workers:         workers,
		pendingFiles:    make(map[string]time.Time),
		stopCh:          make(chan struct{}),
	}
	w.debounceMs.Store(int64(debounceMs))
	return w, nil
}

// Watch blocks, watching dirs recursively until ctx is cancelled or
// Stop is called.
func (w *Watcher) Watch(ctx context.Context, dirs []string) error {
	for _, dir := range dirs {
		if err := w.addDirRecursive(dir); err != nil {
			log.Printf("Warning: failed to watch %s: %v", dir, err)
		}
	}

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.fsWatcher.Close()
	})
}

func (w *Watcher) addDirRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if w.shouldExclude(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) shouldExclude(path string) bool {
	currentPath := path
	for currentPath != "." && currentPath != string(filepath.Separator) {
		base := filepath.Base(currentPath)
		for _, pattern := range w.excludePatterns {
			if util.MatchPattern(pattern, base) {
				return true
			}
		}
		currentPath = filepath.Dir(currentPath)
	}
	return false
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.shouldExclude(event.Name) {
		return
	}
	if !discovery.IsJavaFile(event.Name) {
		return
	}

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write,
		event.Op&fsnotify.Create == fsnotify.Create:
		w.queueFile(event.Name)
	case event.Op&fsnotify.Remove == fsnotify.Remove,
		event.Op&fsnotify.Rename == fsnotify.Rename:
		w.queueFile(event.Name + "|DELETE")
	}
}

func (w *Watcher) queueFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pendingFiles[path] = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(w.debounceMs.Load()) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	threshold := time.Duration(w.debounceMs.Load()) * time.Millisecond

	var toProcess []string
	for path, queuedAt := range w.pendingFiles {
		if now.Sub(queuedAt) >= threshold {
			toProcess = append(toProcess, path)
			delete(w.pendingFiles, path)
		}
	}
	w.mu.Unlock()

	for _, path := range toProcess {
		if strings.HasSuffix(path, "|DELETE") {
			w.handleDelete(ctx, strings.TrimSuffix(path, "|DELETE"))
			continue
		}
		if err := w.reanalyze(ctx, path); err != nil {
			log.Printf("Failed to reanalyze %s: %v", path, err)
		} else {
			log.Printf("Reanalyzed: %s", path)
		}
	}
}

// reanalyze re-runs the pipeline on a single file and replaces its
// slice of the persisted graph. Cross-file edges (an overridden method
// in another file widening onto this one, say) are only as fresh as
// the last full analyze; the watcher trades that staleness for not
// re-parsing the whole tree on every keystroke.
func (w *Watcher) reanalyze(ctx context.Context, path string) error {
	result, err := pipeline.Analyze(ctx, []string{path}, w.workers)
	if err != nil {
		return err
	}

	if w.store == nil {
		return nil
	}
	return w.store.ReplaceFile(ctx, path, result.Graph.Nodes(), result.Graph.Edges())
}

func (w *Watcher) handleDelete(ctx context.Context, path string) {
	if path == "" {
		log.Printf("Warning: skipping delete with empty path")
		return
	}
	if w.store == nil {
		return
	}
	if err := w.store.DeleteFile(ctx, path); err != nil {
		log.Printf("Warning: failed to delete file %s: %v", path, err)
	} else {
		log.Printf("Deleted: %s", path)
	}
}
