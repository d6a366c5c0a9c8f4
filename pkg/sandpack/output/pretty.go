package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/generator"
)

// PrettyFormatter renders a report with colors for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *generator.Report) error {
	if len(r.Projects) == 0 {
		w.WriteString(warnStyle.Render("No project folders in " + r.Root))
		w.WriteString("\n")
		return nil
	}

	for _, p := range r.Projects {
		w.WriteString(f.formatProject(p))
		w.WriteString("\n")
		for _, warning := range p.Warnings {
			w.WriteString("  ")
			w.WriteString(warnStyle.Render("! " + warning))
			w.WriteString("\n")
		}
	}

	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatProject(p generator.ProjectResult) string {
	switch p.Status {
	case generator.StatusFailed:
		return failStyle.Render("✗ "+p.Name+":") + " " + failStyle.Render(p.Error)
	case generator.StatusUnchanged:
		return mutedStyle.Render("= unchanged") + " " + stressStyle.Render(p.OutputPath) + " " + f.details(p)
	default:
		return okStyle.Render("✓ wrote") + " " + stressStyle.Render(p.OutputPath) + " " + f.details(p)
	}
}

func (f *PrettyFormatter) details(p generator.ProjectResult) string {
	parts := []string{
		fmt.Sprintf("%d files", p.Files),
		fmt.Sprintf("%d hidden", p.Hidden),
		humanize.IBytes(uint64(p.Bytes)),
	}
	if len(p.Synthesized) > 0 {
		parts = append(parts, "synthesized "+strings.Join(p.Synthesized, ", "))
	}
	return mutedStyle.Render("(" + strings.Join(parts, ", ") + ")")
}

func (f *PrettyFormatter) formatFooter(r *generator.Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%s %s",
		mutedStyle.Render("Projects:"),
		stressStyle.Render(fmt.Sprintf("%d", len(r.Projects)))))

	parts = append(parts, okStyle.Render(fmt.Sprintf("%d written", r.Count(generator.StatusWritten))))
	parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d unchanged", r.Count(generator.StatusUnchanged))))

	if failed := r.Failed(); failed > 0 {
		parts = append(parts, failStyle.Render(fmt.Sprintf("%d failed", failed)))
	}

	parts = append(parts, fmt.Sprintf("%s %s",
		mutedStyle.Render("Time:"),
		stressStyle.Render(formatDuration(r.Duration))))

	return summaryBox.Render(strings.Join(parts, "  "))
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
