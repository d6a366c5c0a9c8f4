package output

import (
	"bytes"
	"fmt"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/generator"
)

// PlainFormatter writes one uncolored line per project, suitable for
// scripting and piping.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *generator.Report) error {
	for _, p := range r.Projects {
		switch p.Status {
		case generator.StatusFailed:
			fmt.Fprintf(w, "✗ %s: %s\n", p.Name, p.Error)
		case generator.StatusUnchanged:
			fmt.Fprintf(w, "= unchanged %s\n", p.OutputPath)
		default:
			fmt.Fprintf(w, "✓ wrote %s\n", p.OutputPath)
		}
		for _, warning := range p.Warnings {
			fmt.Fprintf(w, "! %s: %s\n", p.Name, warning)
		}
	}
	return nil
}
