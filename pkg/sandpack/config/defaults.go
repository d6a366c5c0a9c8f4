// Package config provides configuration management for the sandpack tools.
package config

import "time"

// Default configuration values.
const (
	// DefaultProjectsDir is the project root, relative to the working directory.
	DefaultProjectsDir = "public/projects"

	// DefaultOutputName is the manifest file written into every project folder.
	DefaultOutputName = "files.json"

	// DefaultWorkers is the number of projects generated concurrently.
	DefaultWorkers = 4

	// DefaultOutput is the report format printed after a generation run.
	DefaultOutput = "pretty"

	// DefaultServeAddr is the listen address of the viewer server.
	DefaultServeAddr = "127.0.0.1:8080"

	// DefaultPublicDir is the static root served by the viewer.
	DefaultPublicDir = "public"

	// DefaultBasePath is the URL prefix the viewer is mounted under.
	DefaultBasePath = "/"

	// DefaultTitle is the heading of the project index page.
	DefaultTitle = "YC React Sandpack"

	// DefaultFetchTimeout bounds a single manifest fetch.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultDebounce is how long watch mode waits for events to settle.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultRetentionDays is how long generation runs are kept in history.
	DefaultRetentionDays = 30

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)
