package viewer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/logging"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/manifest"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

var logger = logging.Get("viewer")

const shutdownTimeout = 5 * time.Second

// WidgetOptions are the editor options handed to the Sandpack widget.
var WidgetOptions = map[string]any{
	"showTabs":         true,
	"showLineNumbers":  true,
	"showInlineErrors": true,
	"wrapContent":      true,
	"autorun":          true,
	"resizablePanels":  true,
	"recompileMode":    "delayed",
	"recompileDelay":   300,
	"editorHeight":     "auto",
}

// WidgetTemplate is the Sandpack template the projects run under.
const WidgetTemplate = "react"

// Options configures a Server.
type Options struct {
	// Addr is the listen address.
	Addr string

	// PublicDir is the static root; manifests are served from PublicDir/projects.
	PublicDir string

	// BasePath is the URL prefix, with leading and trailing slash.
	BasePath string

	// ManifestBaseURL is where project pages fetch manifests from.
	// Empty means the manifests under PublicDir/projects are read directly.
	ManifestBaseURL string

	// OutputName is the manifest file name. Defaults to files.json.
	OutputName string

	// Title heads the index page.
	Title string

	// Titles maps project ids to display titles.
	Titles map[string]string

	// FetchTimeout bounds one manifest fetch.
	FetchTimeout time.Duration
}

// ProjectLink is one entry of the index page.
type ProjectLink struct {
	ID    string
	Title string
	URL   string
}

// Server is the viewer HTTP server.
type Server struct {
	opts   Options
	source Source
	mux    *http.ServeMux
}

type indexPage struct {
	Title    string
	Base     string
	Projects []ProjectLink
}

type projectPage struct {
	Title  string
	Base   string
	ID     string
	Error  string
	Widget *widgetConfig
}

type widgetConfig struct {
	Template string            `json:"template"`
	Files    manifest.Manifest `json:"files"`
	Options  map[string]any    `json:"options"`
}

// NewServer creates a Server and registers its routes.
func NewServer(opts Options) *Server {
	if opts.BasePath == "" {
		opts.BasePath = "/"
	}
	if opts.OutputName == "" {
		opts.OutputName = manifest.DefaultFileName
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}

	s := &Server{opts: opts, mux: http.NewServeMux()}
	if opts.ManifestBaseURL != "" {
		s.source = &Client{
			BaseURL:  opts.ManifestBaseURL,
			FileName: opts.OutputName,
			HTTP:     &http.Client{Timeout: opts.FetchTimeout},
		}
	} else {
		s.source = &DirSource{Dir: s.projectsDir(), FileName: opts.OutputName}
	}

	base := opts.BasePath
	s.mux.HandleFunc("GET "+base+"{$}", s.handleIndex)
	s.mux.HandleFunc("GET "+base+"p/{id}", s.handleProject)
	s.mux.HandleFunc("GET "+base+"p/{id}/{rest...}", s.handleBadID)
	s.mux.Handle("GET "+base+"projects/", s.staticHandler())
	if base != "/" {
		s.mux.Handle("GET "+strings.TrimSuffix(base, "/"), http.RedirectHandler(base, http.StatusMovedPermanently))
	}

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	logger.Info("viewer listening", "url", "http://"+ln.Addr().String()+s.opts.BasePath)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("viewer shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down viewer: %w", err)
		}
		return nil
	}
}

// Projects lists the project folders that hold a manifest, sorted by id.
func (s *Server) Projects() ([]ProjectLink, error) {
	dir := s.projectsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ProjectLink{}, nil
		}
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	links := []ProjectLink{}
	for _, e := range entries {
		if !e.IsDir() || ValidateID(e.Name()) != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, e.Name(), s.opts.OutputName)); err != nil {
			continue
		}
		links = append(links, ProjectLink{
			ID:    e.Name(),
			Title: s.title(e.Name()),
			URL:   s.opts.BasePath + "p/" + e.Name(),
		})
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].ID < links[j].ID
	})
	return links, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	links, err := s.Projects()
	if err != nil {
		logger.Error("listing projects failed", "error", err)
		http.Error(w, "failed to list projects", http.StatusInternalServerError)
		return
	}

	s.render(w, http.StatusOK, "index.html", indexPage{
		Title:    s.opts.Title,
		Base:     s.opts.BasePath,
		Projects: links,
	})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	page := projectPage{Title: s.title(id), Base: s.opts.BasePath, ID: id}

	if err := ValidateID(id); err != nil {
		page.Error = s.loadError(err)
		s.render(w, http.StatusBadRequest, "project.html", page)
		return
	}

	files, err := s.source.Fetch(r.Context(), id)
	if err != nil {
		logger.Warn("manifest fetch failed", "project", id, "error", err)
		page.Error = s.loadError(err)
		s.render(w, statusFor(err), "project.html", page)
		return
	}

	page.Widget = &widgetConfig{Template: WidgetTemplate, Files: files, Options: WidgetOptions}
	s.render(w, http.StatusOK, "project.html", page)
}

func (s *Server) handleBadID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id") + "/" + r.PathValue("rest")
	s.render(w, http.StatusBadRequest, "project.html", projectPage{
		Title: id,
		Base:  s.opts.BasePath,
		ID:    id,
		Error: s.loadError(ValidateID(id)),
	})
}

// staticHandler serves the project folders without caching. Dot-prefixed
// path segments are never served.
func (s *Server) staticHandler() http.Handler {
	prefix := s.opts.BasePath + "projects/"
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(s.projectsDir())))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, seg := range strings.Split(strings.TrimPrefix(r.URL.Path, prefix), "/") {
			if strings.HasPrefix(seg, ".") {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})
}

func (s *Server) loadError(err error) string {
	return fmt.Sprintf("Failed to load %s: %v", s.opts.OutputName, err)
}

func (s *Server) projectsDir() string {
	return filepath.Join(s.opts.PublicDir, "projects")
}

// title returns the display title of a project. Config keys may have been
// lower-cased, so the lookup falls back to a case-insensitive match.
func (s *Server) title(id string) string {
	if t, ok := s.opts.Titles[id]; ok && t != "" {
		return t
	}
	for k, t := range s.opts.Titles {
		if strings.EqualFold(k, id) && t != "" {
			return t
		}
	}
	return id
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("rendering page failed", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// statusFor maps a manifest fetch error to the status of the project page.
func statusFor(err error) int {
	var httpErr *HTTPError
	switch {
	case errors.Is(err, ErrInvalidProjectID):
		return http.StatusBadRequest
	case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
