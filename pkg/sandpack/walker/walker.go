// Package walker enumerates the files of a project folder.
//
// Entries whose name starts with a dot and entries on the ignore list are
// skipped at every depth; directories are descended in parallel with fastwalk.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/logging"
)

// DefaultIgnoreNames are never included, whatever their location.
var DefaultIgnoreNames = []string{"files.json", ".DS_Store", "Thumbs.db", "desktop.ini"}

// IgnoreNamesFor returns the default ignore list with outputName added.
func IgnoreNamesFor(outputName string) []string {
	names := append([]string(nil), DefaultIgnoreNames...)
	if outputName != "" && outputName != DefaultIgnoreNames[0] {
		names = append(names, outputName)
	}
	return names
}

// ErrNotDirectory is returned when the walk root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// File describes one file found under the walk root.
type File struct {
	// Abs is the path usable to open the file.
	Abs string

	// Rel is the slash-separated path relative to the root.
	Rel string
}

// Options configures a Walker.
type Options struct {
	// IgnoreNames are base names skipped at any depth.
	// Nil means DefaultIgnoreNames.
	IgnoreNames []string

	// Exclude holds glob patterns matched against the slash relative
	// path and the base name. Matching directories are not descended.
	Exclude []string

	// Workers bounds the number of directory readers. Zero lets fastwalk decide.
	Workers int

	// OnSkip is called for entries that could not be read.
	// It must be safe for concurrent use.
	OnSkip func(path string, err error)
}

// Walker lists project files.
type Walker struct {
	ignore  map[string]struct{}
	exclude []glob.Glob
	workers int
	onSkip  func(path string, err error)
}

var logger = logging.Get("walker")

// New creates a Walker. It fails when an exclude pattern does not compile.
func New(opts Options) (*Walker, error) {
	names := opts.IgnoreNames
	if names == nil {
		names = DefaultIgnoreNames
	}

	w := &Walker{
		ignore:  make(map[string]struct{}, len(names)),
		workers: opts.Workers,
		onSkip:  opts.OnSkip,
	}
	for _, name := range names {
		w.ignore[name] = struct{}{}
	}

	for _, pattern := range opts.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		w.exclude = append(w.exclude, g)
	}

	return w, nil
}

// Walk returns every non-excluded file under root, sorted by Rel.
func (w *Walker) Walk(root string) ([]File, error) {
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	var (
		mu    sync.Mutex
		files []File
	)

	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: w.workers,
	}

	err = fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.skip(path, err)
			return nil
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			w.skip(path, relErr)
			return nil
		}
		rel = filepath.ToSlash(rel)

		if w.excluded(d.Name(), rel) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, statErr := os.Stat(path)
			if statErr != nil {
				w.skip(path, statErr)
				return nil
			}
			if target.IsDir() {
				logger.Debug("not following directory symlink", "path", path)
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		mu.Lock()
		files = append(files, File{Abs: path, Rel: rel})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Rel < files[j].Rel
	})

	return files, nil
}

// excluded reports whether an entry is left out of the walk.
func (w *Walker) excluded(name, rel string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := w.ignore[name]; ok {
		return true
	}
	for _, g := range w.exclude {
		if g.Match(rel) || g.Match(name) {
			return true
		}
	}
	return false
}

func (w *Walker) skip(path string, err error) {
	logger.Warn("skipping unreadable entry", "path", path, "error", err)
	if w.onSkip != nil {
		w.onSkip(path, err)
	}
}
