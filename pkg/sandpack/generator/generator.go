// Package generator writes one files.json manifest into every project
// folder under a projects directory.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
	"golang.org/x/sync/errgroup"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/logging"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/manifest"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/walker"
)

// ErrProjectsDirNotFound is returned when the projects directory does not
// exist or is not a directory.
var ErrProjectsDirNotFound = errors.New("projects dir not found")

// Recorder persists finished generation runs.
type Recorder interface {
	Record(ctx context.Context, report *Report) error
}

// Options configures a Generator.
type Options struct {
	// Root is the projects directory; each subdirectory is one project.
	Root string

	// OutputName is the manifest file name. Defaults to files.json.
	OutputName string

	// Exclude holds extra glob patterns passed to the walker.
	Exclude []string

	// Workers bounds the number of projects generated concurrently.
	Workers int

	// Recorder, when set, receives every finished report.
	Recorder Recorder

	// Read reads file content. Nil means os.ReadFile.
	Read manifest.ReadFunc
}

// Generator runs manifest generation.
type Generator struct {
	opts Options
}

var logger = logging.Get("generator")

// New creates a Generator. Exclude patterns are validated here.
func New(opts Options) (*Generator, error) {
	if opts.OutputName == "" {
		opts.OutputName = manifest.DefaultFileName
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if _, err := walker.New(walker.Options{Exclude: opts.Exclude}); err != nil {
		return nil, err
	}
	return &Generator{opts: opts}, nil
}

// Root returns the projects directory.
func (g *Generator) Root() string {
	return g.opts.Root
}

// OutputName returns the manifest file name.
func (g *Generator) OutputName() string {
	return g.opts.OutputName
}

// Generate builds and writes the manifest of every project. A missing
// projects directory returns ErrProjectsDirNotFound; no project folders is
// a warning and an empty report. Failed projects do not stop the run: the
// report holds every project and the returned error joins their failures.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	names, err := g.Projects()
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		logger.Warn("No project folders in", "dir", g.opts.Root)
		return &Report{Root: g.opts.Root, StartedAt: time.Now(), Projects: []ProjectResult{}}, nil
	}

	return g.GenerateProjects(ctx, names...)
}

// GenerateProjects generates the named projects only.
func (g *Generator) GenerateProjects(ctx context.Context, names ...string) (*Report, error) {
	if err := g.checkRoot(); err != nil {
		return nil, err
	}

	start := time.Now()
	report := &Report{
		Root:      g.opts.Root,
		StartedAt: start,
		Projects:  make([]ProjectResult, len(names)),
	}

	eg := new(errgroup.Group)
	eg.SetLimit(g.opts.Workers)

	for i, name := range names {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.Projects[i] = g.failed(name, err)
				return nil
			}
			report.Projects[i] = g.project(name)
			return nil
		})
	}
	_ = eg.Wait()

	report.Duration = time.Since(start)

	if g.opts.Recorder != nil {
		if err := g.opts.Recorder.Record(ctx, report); err != nil {
			logger.Warn("failed to record run", "error", err)
		}
	}

	logger.Debug("generation finished",
		"projects", len(report.Projects),
		"failed", report.Failed(),
		"duration", report.Duration)

	return report, report.Err()
}

// Projects lists the project folder names under the root, sorted.
// Dot-prefixed folders are not projects.
func (g *Generator) Projects() ([]string, error) {
	if err := g.checkRoot(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(g.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (g *Generator) checkRoot() error {
	info, err := os.Stat(g.opts.Root)
	if err != nil || !info.IsDir() {
		logger.Error("Projects dir not found", "dir", g.opts.Root)
		return fmt.Errorf("%w: %s", ErrProjectsDirNotFound, g.opts.Root)
	}
	return nil
}

// project generates the manifest of a single project folder.
func (g *Generator) project(name string) ProjectResult {
	// Names may come from the command line or watch events; keep them inside Root.
	dir, err := securejoin.SecureJoin(g.opts.Root, name)
	if err != nil {
		return g.failed(name, err)
	}
	log := logger.With("project", name)

	res := ProjectResult{
		Name:       name,
		OutputPath: filepath.Join(dir, g.opts.OutputName),
	}

	var mu sync.Mutex
	w, err := walker.New(walker.Options{
		IgnoreNames: walker.IgnoreNamesFor(g.opts.OutputName),
		Exclude:     g.opts.Exclude,
		OnSkip: func(path string, err error) {
			mu.Lock()
			res.Warnings = append(res.Warnings, fmt.Sprintf("skipped %s: %v", path, err))
			mu.Unlock()
		},
	})
	if err != nil {
		return g.failed(name, err)
	}

	files, err := w.Walk(dir)
	if err != nil {
		return g.failed(name, fmt.Errorf("failed to walk project: %w", err))
	}

	b := manifest.Builder{Read: g.opts.Read}
	built, err := b.Build(dir, files)
	if err != nil {
		return g.failed(name, err)
	}
	for _, s := range built.Skipped {
		log.Warn("skipping unreadable file", "path", s.Rel, "error", s.Err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("skipped %s: %v", s.Rel, s.Err))
	}

	n, written, err := manifest.Write(res.OutputPath, built.Manifest)
	if err != nil {
		return g.failed(name, fmt.Errorf("failed to write %s: %w", res.OutputPath, err))
	}

	res.Files = len(built.Manifest)
	res.Hidden = built.Manifest.HiddenCount()
	res.Synthesized = built.Synthesized
	res.Bytes = n
	res.Status = StatusUnchanged
	if written {
		res.Status = StatusWritten
	}

	log.Debug("manifest generated", "files", res.Files, "hidden", res.Hidden, "status", res.Status)
	return res
}

func (g *Generator) failed(name string, err error) ProjectResult {
	logger.Error("project failed", "project", name, "error", err)
	return ProjectResult{
		Name:       name,
		OutputPath: filepath.Join(g.opts.Root, name, g.opts.OutputName),
		Status:     StatusFailed,
		Error:      err.Error(),
		Err:        err,
	}
}
