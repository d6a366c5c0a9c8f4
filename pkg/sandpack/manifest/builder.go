package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/directive"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/walker"
)

// ReadFunc reads the content of a file.
type ReadFunc func(path string) ([]byte, error)

// SkippedFile is a file left out of a manifest because it could not be read.
type SkippedFile struct {
	Rel string
	Err error
}

// Result is the outcome of building one project.
type Result struct {
	Manifest Manifest

	// Synthesized lists the keys that were generated rather than read.
	Synthesized []string

	// Skipped lists unreadable files.
	Skipped []SkippedFile
}

// Builder assembles project manifests.
type Builder struct {
	// Read reads file content. Nil means os.ReadFile.
	Read ReadFunc
}

// EntryFor returns the manifest entry for a file with the given content:
// the directive in its leading comment when present, the default
// visibility otherwise.
func EntryFor(rel, code string) Entry {
	hidden, ok := directive.Parse(rel, code)
	if !ok {
		hidden = DefaultHidden(rel)
	}
	return Entry{Code: code, Hidden: hidden}
}

// Build creates the manifest of the project in projectDir from its walked
// files. Files outside the text allow-list are ignored; unreadable files
// are reported in Result.Skipped. Missing /package.json and /index.html
// entries are synthesized.
func (b *Builder) Build(projectDir string, files []walker.File) (*Result, error) {
	read := b.Read
	if read == nil {
		read = os.ReadFile
	}

	res := &Result{Manifest: make(Manifest, len(files)+2)}
	rels := make([]string, 0, len(files))

	for _, f := range files {
		rels = append(rels, f.Rel)
		if !IsText(f.Rel) {
			continue
		}

		data, err := read(f.Abs)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedFile{Rel: f.Rel, Err: err})
			continue
		}
		res.Manifest[Key(f.Rel)] = EntryFor(f.Rel, string(data))
	}

	added, err := EnsurePackageJSON(res.Manifest, filepath.Base(projectDir), rels)
	if err != nil {
		return nil, err
	}
	if added {
		res.Synthesized = append(res.Synthesized, PackageJSONKey)
	}
	if EnsureIndexHTML(res.Manifest) {
		res.Synthesized = append(res.Synthesized, IndexHTMLKey)
	}

	return res, nil
}

// EnsurePackageJSON adds a hidden /package.json entry when m has none.
// It reports whether an entry was added.
func EnsurePackageJSON(m Manifest, name string, rels []string) (bool, error) {
	if _, ok := m[PackageJSONKey]; ok {
		return false, nil
	}

	code, err := NewPackageJSON(name, DetectMain(rels))
	if err != nil {
		return false, err
	}
	m[PackageJSONKey] = Entry{Code: code, Hidden: true}
	return true, nil
}

// EnsureIndexHTML adds a hidden /index.html entry when m has none.
// It reports whether an entry was added.
func EnsureIndexHTML(m Manifest) bool {
	if _, ok := m[IndexHTMLKey]; ok {
		return false
	}
	m[IndexHTMLKey] = Entry{Code: IndexHTML, Hidden: true}
	return true
}

// NewPackageJSON renders the synthesized package descriptor as two-space
// indented JSON without a trailing newline.
func NewPackageJSON(name, main string) (string, error) {
	pkg := PackageJSON{
		Name:    name,
		Version: PackageVersion,
		Main:    main,
		Dependencies: map[string]string{
			"react":     ReactVersion,
			"react-dom": ReactDOMVersion,
		},
	}

	data, err := marshal(pkg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal package.json: %w", err)
	}
	return string(bytes.TrimSuffix(data, []byte("\n"))), nil
}

// marshal encodes v with two-space indentation, no HTML escaping and a
// trailing newline.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
