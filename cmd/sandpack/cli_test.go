package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/config"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/history"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: commands share cobra and viper globals, so these tests cannot run in parallel.

func TestGenerateCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := t.TempDir()
	project := filepath.Join(root, "code1_2")
	require.NoError(t, os.MkdirAll(project, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "App.js"), []byte("export default function App() {}\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"gen", "-p", root, "--no-history", "-o", "json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var report struct {
		Summary struct {
			Projects int `json:"projects"`
			Written  int `json:"written"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report), out.String())
	assert.Equal(t, 1, report.Summary.Projects)
	assert.Equal(t, 1, report.Summary.Written)

	m, err := manifest.Read(filepath.Join(project, config.DefaultOutputName))
	require.NoError(t, err)
	assert.False(t, m["/App.js"].Hidden)
	assert.Contains(t, m, manifest.PackageJSONKey)
	assert.Contains(t, m, manifest.IndexHTMLKey)
}

func TestTreeCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := t.TempDir()
	path := filepath.Join(root, "code1_2", config.DefaultOutputName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	_, _, err := manifest.Write(path, manifest.Manifest{
		"/App.js":       {Code: "x"},
		"/src/util.js":  {Code: "y", Hidden: true},
		"/package.json": {Code: "{}", Hidden: true},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"tree", "code1_2", "-p", root})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "code1_2\n"), out.String())
	assert.Contains(t, out.String(), "util.js (hidden)")
	assert.Contains(t, out.String(), "3 entries, 2 hidden")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "sandpack "+version), out.String())
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"0f8fad5b-d9cb-469f-a165-70867728950e", 12, "0f8fad5b-..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateString(tt.in, tt.maxLen), "truncateString(%q, %d)", tt.in, tt.maxLen)
	}
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "run", pluralize(1, "run", "runs"))
	assert.Equal(t, "runs", pluralize(0, "run", "runs"))
	assert.Equal(t, "runs", pluralize(2, "run", "runs"))
}

func TestEnvOverrides(t *testing.T) {
	environ := []string{
		"HOME=/home/dev",
		"SANDPACK_SERVE_ADDR=:3000",
		"SANDPACK_PROJECTS_DIR=site/projects",
		"SANDPACKX=1",
	}
	assert.Equal(t, []string{
		"SANDPACK_PROJECTS_DIR=site/projects",
		"SANDPACK_SERVE_ADDR=:3000",
	}, envOverrides(environ))
}

func TestPrintRuns(t *testing.T) {
	runs := []history.Run{{
		ID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		Timestamp: time.Now().Add(-time.Hour),
		Root:      "public/projects",
		Projects: []history.ProjectRecord{
			{Name: "code1_2", Files: 3, Bytes: 2048, Status: "written"},
			{Name: "broken", Status: "failed", Error: "permission denied"},
		},
	}}

	var out bytes.Buffer
	printRuns(&out, runs)

	text := out.String()
	assert.Contains(t, text, "0f8fad5b-...")
	assert.Contains(t, text, "1 hour ago")
	assert.Contains(t, text, "2.0 kB")
	assert.Contains(t, text, "Showing 1 entries")
}

func TestPrintRun(t *testing.T) {
	run := &history.Run{
		ID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		Timestamp: time.Now(),
		Root:      "public/projects",
		Duration:  1500 * time.Millisecond,
		Projects: []history.ProjectRecord{
			{Name: "code1_2", Files: 3, Hidden: 2, Bytes: 512, Status: "written"},
			{Name: "broken", Status: "failed", Error: "permission denied"},
		},
	}

	var out bytes.Buffer
	printRun(&out, run)

	text := out.String()
	assert.Contains(t, text, "ID:         0f8fad5b-d9cb-469f-a165-70867728950e")
	assert.Contains(t, text, "Duration:   1.5s")
	assert.Contains(t, text, "2 (1 written, 0 unchanged, 1 failed)")
	assert.Contains(t, text, "code1_2")
	assert.Contains(t, text, "permission denied")
}

func TestConfigView(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	view := configView(cfg)
	assert.Equal(t, config.DefaultProjectsDir, view["projects_dir"])
	serve, ok := view["serve"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, config.DefaultFetchTimeout.String(), serve["fetch_timeout"])
}
