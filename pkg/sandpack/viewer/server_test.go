package viewer

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
  "/App.js": {
    "code": "export default function App() { return <h1>Counter</h1>; }\n",
    "hidden": false
  },
  "/index.html": {
    "code": "<div id='root'></div>",
    "hidden": true
  }
}
`

// publicDir creates public/projects with a manifest for each id.
func publicDir(t *testing.T, ids ...string) string {
	t.Helper()

	public := t.TempDir()
	for _, id := range ids {
		dir := filepath.Join(public, "projects", id)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "files.json"), []byte(sampleManifest), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(public, "projects"), 0o755))
	return public
}

func startServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, http.Header, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header, string(body)
}

func TestIndexListsProjects(t *testing.T) {
	public := publicDir(t, "code1_2", "todo")
	// Folders without a manifest are not listed.
	require.NoError(t, os.MkdirAll(filepath.Join(public, "projects", "draft"), 0o755))

	srv := startServer(t, Options{
		PublicDir: public,
		Title:     "YC React Sandpack",
		Titles:    map[string]string{"code1_2": "Counter"},
	})

	status, _, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h1>YC React Sandpack</h1>")
	assert.Contains(t, body, "Counter")
	assert.Contains(t, body, "Project ID: code1_2")
	assert.Contains(t, body, `href="/p/code1_2"`)
	assert.Contains(t, body, `href="/p/todo"`)
	assert.NotContains(t, body, "draft")
}

func TestIndexEmpty(t *testing.T) {
	srv := startServer(t, Options{PublicDir: t.TempDir(), Title: "Empty"})

	status, _, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "No projects found.")
}

func TestProjectPageRendersWidget(t *testing.T) {
	srv := startServer(t, Options{PublicDir: publicDir(t, "code1_2")})

	status, header, body := get(t, srv.URL+"/p/code1_2")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "no-store", header.Get("Cache-Control"))
	assert.Contains(t, body, `id="sandpack-config"`)
	assert.Contains(t, body, `"/App.js"`)
	assert.Contains(t, body, `"template":"react"`)
	assert.Contains(t, body, `"recompileMode":"delayed"`)
	assert.Contains(t, body, `"recompileDelay":300`)
	assert.Contains(t, body, "Loading…")
	assert.NotContains(t, body, "Failed to load")
}

func TestProjectPageMissingManifest(t *testing.T) {
	srv := startServer(t, Options{PublicDir: publicDir(t)})

	status, _, body := get(t, srv.URL+"/p/ghost")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Failed to load files.json: HTTP 404")
	assert.NotContains(t, body, "sandpack-config")
	assert.NotContains(t, body, `id="sandpack"`)
}

func TestProjectPageUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	srv := startServer(t, Options{PublicDir: t.TempDir(), ManifestBaseURL: upstream.URL + "/"})

	status, _, body := get(t, srv.URL+"/p/code1_2")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body, "Failed to load files.json: HTTP 500")
}

func TestProjectPageRemoteManifest(t *testing.T) {
	var path string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = io.WriteString(w, sampleManifest)
	}))
	defer upstream.Close()

	srv := startServer(t, Options{PublicDir: t.TempDir(), ManifestBaseURL: upstream.URL + "/site/"})

	status, _, body := get(t, srv.URL+"/p/code1_2")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/site/projects/code1_2/files.json", path)
	assert.Contains(t, body, `"/App.js"`)
}

func TestProjectPageIgnoresRequestHost(t *testing.T) {
	var hits atomic.Int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{"/Evil.js":{"code":"alert(1)"}}`)
	}))
	defer foreign.Close()

	handler := NewServer(Options{PublicDir: publicDir(t, "code1_2")}).Handler()

	for _, tc := range []struct {
		path   string
		status int
		want   string
	}{
		{path: "/p/code1_2", status: http.StatusOK, want: `"/App.js"`},
		{path: "/p/ghost", status: http.StatusNotFound, want: "Failed to load files.json: HTTP 404"},
	} {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Host = foreign.Listener.Addr().String()
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, tc.status, rec.Code, tc.path)
		assert.Contains(t, rec.Body.String(), tc.want, tc.path)
		assert.NotContains(t, rec.Body.String(), "Evil.js", tc.path)
	}
	assert.Zero(t, hits.Load())
}

func TestProjectPageInvalidIDs(t *testing.T) {
	srv := startServer(t, Options{PublicDir: publicDir(t, "code1_2")})

	for _, p := range []string{"/p/.hidden", "/p/a/b", "/p/a%2Fb"} {
		status, _, body := get(t, srv.URL+p)
		assert.Equal(t, http.StatusBadRequest, status, p)
		assert.Contains(t, body, "invalid project id", p)
	}
}

func TestStaticManifests(t *testing.T) {
	public := publicDir(t, "code1_2")
	require.NoError(t, os.WriteFile(filepath.Join(public, "projects", "code1_2", ".env"), []byte("SECRET=1"), 0o644))

	srv := startServer(t, Options{PublicDir: public})

	status, header, body := get(t, srv.URL+"/projects/code1_2/files.json")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "no-store", header.Get("Cache-Control"))
	assert.Equal(t, sampleManifest, body)

	status, _, _ = get(t, srv.URL+"/projects/code1_2/.env")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBasePath(t *testing.T) {
	srv := startServer(t, Options{
		PublicDir: publicDir(t, "code1_2"),
		BasePath:  "/yc_react_sandpack/",
	})

	status, _, body := get(t, srv.URL+"/yc_react_sandpack/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `href="/yc_react_sandpack/p/code1_2"`)

	status, _, body = get(t, srv.URL+"/yc_react_sandpack/p/code1_2")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"/App.js"`)

	status, _, _ = get(t, srv.URL+"/yc_react_sandpack")
	assert.Equal(t, http.StatusOK, status, "redirect to the base path is followed")

	status, _, _ = get(t, srv.URL+"/p/code1_2")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTitleLookupIgnoresCase(t *testing.T) {
	s := NewServer(Options{Titles: map[string]string{"code1_2": "Counter", "todoapp": "Todo"}})
	assert.Equal(t, "Counter", s.title("code1_2"))
	assert.Equal(t, "Todo", s.title("TodoApp"))
	assert.Equal(t, "other", s.title("other"))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer(Options{PublicDir: publicDir(t, "code1_2")})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	_, err = http.Get(url)
	assert.Error(t, err)
}
