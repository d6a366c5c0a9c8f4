package output

import (
	"bytes"
	"encoding/json"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/generator"
)

// JSONFormatter writes the report as indented JSON.
type JSONFormatter struct{}

type jsonOutput struct {
	*generator.Report
	Duration string  `json:"duration"`
	Summary  summary `json:"summary"`
}

type summary struct {
	Projects  int `json:"projects" yaml:"projects"`
	Written   int `json:"written" yaml:"written"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Failed    int `json:"failed" yaml:"failed"`
}

func summarize(r *generator.Report) summary {
	return summary{
		Projects:  len(r.Projects),
		Written:   r.Count(generator.StatusWritten),
		Unchanged: r.Count(generator.StatusUnchanged),
		Failed:    r.Failed(),
	}
}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *generator.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(jsonOutput{
		Report:   r,
		Duration: r.Duration.String(),
		Summary:  summarize(r),
	})
}
