// Package output renders generation reports as pretty, plain, json or yaml
// text, and manifests as trees.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/generator"
)

// Formatter renders a generation report.
type Formatter interface {
	Format(w *bytes.Buffer, r *generator.Report) error
}

// ErrUnknownFormat is returned by Get for a name no formatter answers to.
var ErrUnknownFormat = errors.New("unknown output format")

// Formatters are stateless and shared.
var formats = map[string]Formatter{
	"pretty": &PrettyFormatter{},
	"plain":  &PlainFormatter{},
	"json":   &JSONFormatter{},
	"yaml":   &YAMLFormatter{},
}

// Get returns the formatter for name, ignoring case.
func Get(name string) (Formatter, error) {
	f, ok := formats[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// Available returns the sorted formatter names.
func Available() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
