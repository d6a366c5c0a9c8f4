//go:build stave

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
)

// Default target when running `stave` with no arguments.
var Default = Build

var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"g": Gen,
	"w": Watch,
	"s": Serve,
}

const (
	mainPkg     = "./cmd/sandpack"
	binDir      = "bin"
	projectsDir = "public/projects"
)

// Check runs vet, lint and the race-enabled tests.
func Check() error {
	st.Deps(Vet, Lint)
	return Test()
}

// Build compiles bin/sandpack with version information.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	return sh.RunV(st.GoCmd(), "build", "-ldflags", ldflags(), "-o", binary(), mainPkg)
}

// Install puts sandpack into GOBIN.
func Install() error {
	return sh.RunV(st.GoCmd(), "install", "-ldflags", ldflags(), mainPkg)
}

// Gen regenerates the manifests under public/projects.
func Gen() error {
	st.Deps(Build)
	return sh.RunV(binary(), "gen", "--projects-dir", projectsDir)
}

// Watch regenerates manifests as project files change.
func Watch() error {
	st.Deps(Build)
	return sh.RunV(binary(), "watch", "--projects-dir", projectsDir)
}

// Serve regenerates the manifests and starts the viewer.
func Serve() error {
	st.Deps(Gen)
	return sh.RunV(binary(), "serve")
}

// Test runs the tests with the race detector.
func Test() error {
	return sh.RunV(st.GoCmd(), "test", "-race", "-cover", "./...")
}

func Vet() error {
	return sh.RunV(st.GoCmd(), "vet", "./...")
}

func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes bin/ and the generated manifests.
func Clean() error {
	if err := sh.Rm(binDir); err != nil {
		return err
	}
	manifests, err := filepath.Glob(filepath.Join(projectsDir, "*", "files.json"))
	if err != nil {
		return err
	}
	for _, m := range manifests {
		if err := sh.Rm(m); err != nil {
			return err
		}
	}
	return nil
}

func binary() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(binDir, "sandpack.exe")
	}
	return filepath.Join(binDir, "sandpack")
}

func ldflags() string {
	version, commit := "dev", "none"
	if v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil && v != "" {
		version = strings.TrimSpace(v)
	}
	if c, err := sh.Output("git", "rev-parse", "--short", "HEAD"); err == nil && c != "" {
		commit = strings.TrimSpace(c)
	}
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}
