// Package watch regenerates project manifests when project files change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/generator"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/logging"
)

// DefaultDebounce is the quiet period before changed projects are regenerated.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Debounce is how long events must settle before regenerating.
	Debounce time.Duration

	// OnReport receives the report of every generation, including the initial one.
	OnReport func(report *generator.Report, err error)
}

// Watcher watches a projects directory and regenerates changed projects.
type Watcher struct {
	gen     *generator.Generator
	opts    Options
	root    string
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	paths  map[string]bool
	closed bool

	pending map[string]struct{}
}

var logger = logging.Get("watch")

// New creates a Watcher for the projects directory of gen.
func New(gen *generator.Generator, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	root, err := filepath.Abs(gen.Root())
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		gen:     gen,
		opts:    opts,
		root:    root,
		watcher: fsw,
		paths:   make(map[string]bool),
		pending: make(map[string]struct{}),
	}, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}

// Run generates every project once, then regenerates projects as their
// files change. It blocks until ctx is cancelled and returns nil then.
// A missing projects directory is returned as an error right away.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	if _, err := w.gen.Projects(); err != nil {
		return err
	}

	if err := w.watchTree(w.root); err != nil {
		return err
	}

	w.report(w.gen.Generate(ctx))
	logger.Info("watching for changes", "dir", w.root)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.handleEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)

		case <-fire:
			fire = nil
			w.flush(ctx)
		}
	}
}

// handleEvent records the project an event belongs to. It reports whether
// the event needs a regeneration.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}

	segments := strings.Split(filepath.ToSlash(rel), "/")
	for _, seg := range segments {
		if strings.HasPrefix(seg, ".") {
			return false
		}
	}
	if segments[len(segments)-1] == w.gen.OutputName() {
		return false
	}

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.forget(event.Name)
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			_ = w.watchTree(event.Name)
		}
	}

	project := segments[0]
	if len(segments) == 1 {
		// Only folders directly under the root are projects.
		info, err := os.Stat(filepath.Join(w.root, project))
		if err != nil || !info.IsDir() {
			return false
		}
	}

	logger.Debug("change detected", "project", project, "path", rel, "op", event.Op.String())
	w.pending[project] = struct{}{}
	return true
}

// flush regenerates the pending projects that still exist.
func (w *Watcher) flush(ctx context.Context) {
	names := make([]string, 0, len(w.pending))
	for name := range w.pending {
		delete(w.pending, name)
		info, err := os.Stat(filepath.Join(w.root, name))
		if err != nil || !info.IsDir() {
			logger.Debug("project removed", "project", name)
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)

	logger.Info("regenerating", "projects", strings.Join(names, ", "))
	w.report(w.gen.GenerateProjects(ctx, names...))
}

func (w *Watcher) report(report *generator.Report, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("generation failed", "error", err)
	}
	if w.opts.OnReport != nil {
		w.opts.OnReport(report, err)
	}
}

// watchTree adds watches for dir and its subdirectories. Dot-prefixed
// directories and symlinks are skipped.
func (w *Watcher) watchTree(dir string) error {
	conf := fastwalk.Config{Follow: false}
	return fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}
		if !d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return fastwalk.SkipDir
		}
		return w.addWatch(path)
	})
}

func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.paths[path] {
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		logger.Warn("failed to add watch", "path", path, "error", err)
		return err
	}

	w.paths[path] = true
	return nil
}

// forget drops the watch bookkeeping for path and everything below it.
func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prefix := path + string(filepath.Separator)
	for p := range w.paths {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(w.paths, p)
		}
	}
}
