package logging_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/logging"
)

// Note: these tests share the package's global state and cannot run in parallel.

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{"debug", logging.LevelDebug, false},
		{"INFO", logging.LevelInfo, false},
		{"", logging.LevelInfo, false},
		{"warning", logging.LevelWarn, false},
		{"warn", logging.LevelWarn, false},
		{"error", logging.LevelError, false},
		{"loud", logging.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, logging.ErrInvalidLevel) {
				t.Errorf("error should wrap ErrInvalidLevel, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if logging.LevelWarn.String() != "warn" {
		t.Errorf("LevelWarn.String() = %q", logging.LevelWarn.String())
	}
	if logging.Level(42).String() != "unknown" {
		t.Errorf("Level(42).String() = %q", logging.Level(42).String())
	}
}

func TestGetBeforeInitIsSilent(t *testing.T) {
	_ = logging.Close()

	logger := logging.Get("silent")
	// Must not panic and must not write anywhere.
	logger.Info("nobody hears this", "key", "value")

	if logger.Component() != "silent" {
		t.Errorf("Component() = %q, want %q", logger.Component(), "silent")
	}
}

func TestInitConsoleOutput(t *testing.T) {
	var buf bytes.Buffer

	// Obtained before Init: must pick up the console sink afterwards.
	early := logging.Get("early")

	err := logging.Init(logging.Config{
		Level:        "info",
		ConsoleLevel: "info",
		Console:      &buf,
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer logging.Close()

	early.Info("manifest written", "project", "counter")
	early.Debug("hidden at info")

	out := buf.String()
	if !strings.Contains(out, "manifest written") {
		t.Errorf("console output missing message: %q", out)
	}
	if !strings.Contains(out, "project=counter") {
		t.Errorf("console output missing key/value: %q", out)
	}
	if strings.Contains(out, "hidden at info") {
		t.Errorf("debug message should be filtered: %q", out)
	}
}

func TestComponentOverride(t *testing.T) {
	var buf bytes.Buffer

	err := logging.Init(logging.Config{
		Level:        "info",
		ConsoleLevel: "info",
		Console:      &buf,
		Components:   map[string]string{"walker": "debug"},
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer logging.Close()

	logging.Get("walker").Debug("walker detail")
	logging.Get("generator").Debug("generator detail")

	out := buf.String()
	if !strings.Contains(out, "walker detail") {
		t.Errorf("walker debug should be emitted: %q", out)
	}
	if strings.Contains(out, "generator detail") {
		t.Errorf("generator debug should be filtered: %q", out)
	}
}

func TestWithAddsContext(t *testing.T) {
	var buf bytes.Buffer

	if err := logging.Init(logging.Config{ConsoleLevel: "info", Console: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer logging.Close()

	logger := logging.Get("ctx").With("project", "alpha").With("run", 7)
	logger.Warn("skipped file", "path", "a.bin")

	out := buf.String()
	for _, want := range []string{"project=alpha", "run=7", "path=a.bin", "skipped file"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestInitFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sandpack.log")

	if err := logging.Init(logging.Config{Level: "debug", Path: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logging.Get("file").Debug("written to file")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestInitInvalidLevels(t *testing.T) {
	tests := []struct {
		name string
		cfg  logging.Config
	}{
		{"default level", logging.Config{Level: "nope"}},
		{"component level", logging.Config{Components: map[string]string{"x": "nope"}}},
		{"console level", logging.Config{ConsoleLevel: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := logging.Init(tt.cfg); err == nil {
				t.Error("Init() expected error")
			}
		})
	}
}

func TestDefaultLogPath(t *testing.T) {
	path := logging.DefaultLogPath()
	if filepath.Base(path) != "sandpack.log" {
		t.Errorf("DefaultLogPath() = %q", path)
	}
}
