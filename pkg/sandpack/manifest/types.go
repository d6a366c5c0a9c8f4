// Package manifest builds the file map a sandbox widget loads for one
// project and reads and writes it as files.json.
package manifest

import "sort"

// Well-known manifest keys.
const (
	PackageJSONKey = "/package.json"
	IndexHTMLKey   = "/index.html"
)

// DefaultMain is the package main used when no index file exists.
const DefaultMain = "/index.js"

// DefaultFileName is the manifest file written into a project folder.
const DefaultFileName = "files.json"

// IndexHTML is the markup of a synthesized /index.html.
const IndexHTML = "<div id='root'></div>"

// Synthesized package descriptor values.
const (
	PackageVersion  = "1.0.0"
	ReactVersion    = "19.0.0"
	ReactDOMVersion = "19.0.0"
)

// Entry is one file of a manifest.
type Entry struct {
	Code   string `json:"code"`
	Hidden bool   `json:"hidden"`
}

// Manifest maps "/relative/path" keys to entries.
type Manifest map[string]Entry

// Entries returns the manifest keys in sorted order.
func (m Manifest) Entries() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HiddenCount returns the number of hidden entries.
func (m Manifest) HiddenCount() int {
	n := 0
	for _, e := range m {
		if e.Hidden {
			n++
		}
	}
	return n
}

// Visible returns the keys of visible entries in sorted order.
func (m Manifest) Visible() []string {
	var keys []string
	for _, k := range m.Entries() {
		if !m[k].Hidden {
			keys = append(keys, k)
		}
	}
	return keys
}

// PackageJSON is the package descriptor synthesized for projects without one.
type PackageJSON struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Main         string            `json:"main"`
	Dependencies map[string]string `json:"dependencies"`
}
