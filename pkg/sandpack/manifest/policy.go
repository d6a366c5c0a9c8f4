package manifest

import (
	"path"
	"strings"
)

// textExtensions are the file extensions included as text content.
var textExtensions = map[string]struct{}{
	".js":   {},
	".jsx":  {},
	".ts":   {},
	".tsx":  {},
	".json": {},
	".html": {},
	".css":  {},
	".md":   {},
	".txt":  {},
}

// entryComponents are the base names visible when no directive says otherwise.
var entryComponents = map[string]struct{}{
	"App.js":  {},
	"App.jsx": {},
}

// mainCandidates are checked in order by DetectMain.
var mainCandidates = []string{
	"index.jsx",
	"index.js",
	"src/index.jsx",
	"src/index.js",
}

// IsText reports whether rel has an extension on the text allow-list.
func IsText(rel string) bool {
	_, ok := textExtensions[strings.ToLower(path.Ext(rel))]
	return ok
}

// DefaultHidden returns the hidden value of a file without a directive.
func DefaultHidden(rel string) bool {
	_, ok := entryComponents[path.Base(rel)]
	return !ok
}

// DetectMain returns the package main for the given relative paths: the
// first candidate index file present, or DefaultMain.
func DetectMain(rels []string) string {
	present := make(map[string]struct{}, len(rels))
	for _, rel := range rels {
		present[ToSlash(rel)] = struct{}{}
	}

	for _, c := range mainCandidates {
		if _, ok := present[c]; ok {
			return "/" + c
		}
	}
	return DefaultMain
}

// Key returns the manifest key of a relative path.
func Key(rel string) string {
	return "/" + strings.TrimPrefix(ToSlash(rel), "/")
}

// ToSlash replaces backslash separators with forward slashes.
func ToSlash(rel string) string {
	return strings.ReplaceAll(rel, `\`, "/")
}
